package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
	"github.com/eaglebank/user-directory/shared/models"
	"github.com/eaglebank/user-directory/shared/utils"
)

// UserBoltRepository is the embedded UserStore. Records live as JSON
// documents keyed by ID; two index buckets map the name pair and the contact
// number back to an ID. Insert checks both indexes inside its write
// transaction, and Bolt allows a single writer, so duplicates cannot race in.
type UserBoltRepository struct {
	db *BoltDB
}

var _ UserStore = (*UserBoltRepository)(nil)

func NewUserBoltRepository(db *BoltDB) *UserBoltRepository {
	return &UserBoltRepository{db: db}
}

func (r *UserBoltRepository) Insert(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	nameKey, err := userNameKey(user.FirstName, user.LastName)
	if err != nil {
		return err
	}
	contactKey := contactNumberKey(user.ContactNumber)

	doc := *user
	doc.ID = utils.GenerateID(utils.UserIDPrefix)
	doc.CreatedAt = r.db.Now().UTC()

	err = r.db.db.Update(func(tx *bolt.Tx) error {
		names := tx.Bucket(usersByNameBucket)
		numbers := tx.Bucket(usersByContactNumberBucket)
		if names.Get(nameKey) != nil {
			return fmt.Errorf("%w: name %s %s is taken", models.ErrDuplicateUser, user.FirstName, user.LastName)
		}
		if numbers.Get(contactKey) != nil {
			return fmt.Errorf("%w: contact number %d is taken", models.ErrDuplicateUser, user.ContactNumber)
		}

		buf, err := json.Marshal(&doc)
		if err != nil {
			return err
		}

		id := []byte(doc.ID)
		if err := tx.Bucket(usersBucket).Put(id, buf); err != nil {
			return err
		}
		if err := names.Put(nameKey, id); err != nil {
			return err
		}
		return numbers.Put(contactKey, id)
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID, user.CreatedAt = doc.ID, doc.CreatedAt
	return nil
}

// FindOne serves exact name and contact number lookups from the index
// buckets and falls back to a scan for anything else.
func (r *UserBoltRepository) FindOne(ctx context.Context, filter UserFilter) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user *models.User
	err := r.db.db.View(func(tx *bolt.Tx) error {
		if id, ok, err := indexedID(tx, filter); err != nil {
			return err
		} else if ok {
			if id == nil {
				return nil
			}
			u, err := getUser(tx, id)
			if err != nil || u == nil || !filter.Match(u) {
				return err
			}
			user = u
			return nil
		}

		return forEachUser(tx, func(u *models.User) bool {
			if filter.Match(u) {
				user = u
				return false
			}
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (r *UserBoltRepository) Find(ctx context.Context, filter UserFilter) ([]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	users := []*models.User{}
	err := r.db.db.View(func(tx *bolt.Tx) error {
		return forEachUser(tx, func(u *models.User) bool {
			if filter.Match(u) {
				users = append(users, u)
			}
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	return users, nil
}

func (r *UserBoltRepository) FindByIDAndDelete(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user *models.User
	err := r.db.db.Update(func(tx *bolt.Tx) error {
		u, err := getUser(tx, []byte(id))
		if err != nil || u == nil {
			return err
		}

		nameKey, err := userNameKey(u.FirstName, u.LastName)
		if err != nil {
			return err
		}
		if err := tx.Bucket(usersBucket).Delete([]byte(id)); err != nil {
			return err
		}
		if err := tx.Bucket(usersByNameBucket).Delete(nameKey); err != nil {
			return err
		}
		if err := tx.Bucket(usersByContactNumberBucket).Delete(contactNumberKey(u.ContactNumber)); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	return user, nil
}

// indexedID resolves filters that are exactly a name pair or exactly a
// contact number. ok is false when the filter needs a scan; a nil id with ok
// set means the index has no entry.
func indexedID(tx *bolt.Tx, f UserFilter) (id []byte, ok bool, err error) {
	switch {
	case f.NameContains != "":
		return nil, false, nil
	case f.FirstName != "" && f.LastName != "":
		key, err := userNameKey(f.FirstName, f.LastName)
		if err != nil {
			return nil, false, err
		}
		return tx.Bucket(usersByNameBucket).Get(key), true, nil
	case f.ContactNumber != nil && f.FirstName == "" && f.LastName == "":
		return tx.Bucket(usersByContactNumberBucket).Get(contactNumberKey(*f.ContactNumber)), true, nil
	default:
		return nil, false, nil
	}
}

func getUser(tx *bolt.Tx, id []byte) (*models.User, error) {
	buf := tx.Bucket(usersBucket).Get(id)
	if buf == nil {
		return nil, nil
	}
	var u models.User
	if err := json.Unmarshal(buf, &u); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", id, err)
	}
	return &u, nil
}

// forEachUser walks users in key order until fn returns false.
func forEachUser(tx *bolt.Tx, fn func(*models.User) bool) error {
	c := tx.Bucket(usersBucket).Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var u models.User
		if err := json.Unmarshal(v, &u); err != nil {
			return fmt.Errorf("failed to decode user %s: %w", k, err)
		}
		if !fn(&u) {
			return nil
		}
	}
	return nil
}

func userNameKey(firstName, lastName string) ([]byte, error) {
	return json.Marshal([2]string{firstName, lastName})
}

func contactNumberKey(n models.ContactNumber) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(n))
	return b
}
