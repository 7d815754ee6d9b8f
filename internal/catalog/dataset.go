package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cinelogapp/cinelog-server/internal/domain"
)

// Dataset review CSV column headers, as shipped with the catalog.
const (
	colDate       = "Date of Review"
	colUser       = "User"
	colUsefulness = "Usefulness Vote"
	colTotalVotes = "Total Votes"
	colRating     = "User's Rating out of 10"
	colTitle      = "Review Title"
	colText       = "Review Text"
)

// parseDatasetReviews decodes a movie's review CSV into dataset reviews with
// synthetic ids "<movieID>_review_<i>", indexed from zero in file order.
func parseDatasetReviews(movieID string, r io.Reader) ([]*domain.Review, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, they are dropped below

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colDate, colUser, colRating} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var reviews []*domain.Review
	for i := 0; ; i++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", i, err)
		}

		reviews = append(reviews, &domain.Review{
			ID:              movieID + "_review_" + strconv.Itoa(i),
			MovieID:         movieID,
			DateOfReview:    field(row, colDate),
			Username:        field(row, colUser),
			UsefulnessVote:  lenientAtoi(field(row, colUsefulness)),
			TotalVotes:      lenientAtoi(field(row, colTotalVotes)),
			Rating:          lenientAtoi(field(row, colRating)),
			Title:           field(row, colTitle),
			Text:            field(row, colText),
			IsDatasetReview: true,
		})
	}

	return reviews, nil
}

// lenientAtoi parses an integer, treating anything unparseable as zero.
// The dataset carries stray quotes and blanks in its numeric columns.
func lenientAtoi(s string) int {
	n, err := strconv.Atoi(strings.Trim(strings.TrimSpace(s), `"`))
	if err != nil {
		return 0
	}
	return n
}
