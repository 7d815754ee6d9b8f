package store

import (
	"context"
	"github.com/go-json-experiment/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/cinelogapp/cinelog-server/internal/domain"
)

const (
	userPrefix           = "user:"
	userByUsernamePrefix = "idx:users:username:" // For login and session lookups
	userByEmailPrefix    = "idx:users:email:"    // For registration uniqueness
)

var (
	// ErrUserNotFound is returned when a user cannot be found by id or username.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when the username is already registered.
	ErrUsernameTaken = errors.New("username already registered")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

func userKey(id int64) []byte {
	return []byte(userPrefix + strconv.FormatInt(id, 10))
}

// CreateUser persists a new user account, assigning its id from the sequence.
// Username and email uniqueness is case-sensitive exact match, checked inside
// the same transaction that writes the record.
func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	id, err := s.nextUserID()
	if err != nil {
		return err
	}
	user.ID = id

	usernameKey := []byte(userByUsernamePrefix + user.Username)
	emailKey := []byte(userByEmailPrefix + user.Email)
	idBytes := []byte(strconv.FormatInt(id, 10))

	return s.update(func(txn *badger.Txn) error {
		if _, err := txn.Get(usernameKey); err == nil {
			return ErrUsernameTaken
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check username exists: %w", err)
		}

		if _, err := txn.Get(emailKey); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check email exists: %w", err)
		}

		if err := setInTxn(txn, userKey(id), user); err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		if err := txn.Set(usernameKey, idBytes); err != nil {
			return err
		}
		return txn.Set(emailKey, idBytes)
	})
}

// GetUser retrieves a user by id.
func (s *Store) GetUser(_ context.Context, id int64) (*domain.User, error) {
	var user domain.User
	if err := s.get(userKey(id), &user); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by exact username.
func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	usernameKey := []byte(userByUsernamePrefix + username)

	var user domain.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey)
		if err != nil {
			return err
		}

		var id []byte
		if id, err = item.ValueCopy(nil); err != nil {
			return err
		}

		item, err = txn.Get([]byte(userPrefix + string(id)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	return &user, nil
}

// UpdateUserRole overwrites the role of an existing user.
func (s *Store) UpdateUserRole(_ context.Context, id int64, role domain.Role) (*domain.User, error) {
	var user domain.User

	err := s.update(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		}); err != nil {
			return err
		}

		user.Role = role
		return setInTxn(txn, userKey(id), &user)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user role: %w", err)
	}

	return &user, nil
}

// ListUsers returns all user accounts.
func (s *Store) ListUsers(_ context.Context) ([]*domain.User, error) {
	prefix := []byte(userPrefix)
	var users []*domain.User

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			err := item.Value(func(val []byte) error {
				var user domain.User
				if unmarshalErr := json.Unmarshal(val, &user); unmarshalErr != nil {
					if s.logger != nil {
						s.logger.Warn("Skipping malformed user record", "key", string(item.Key()))
					}
					return nil
				}

				users = append(users, &user)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}
