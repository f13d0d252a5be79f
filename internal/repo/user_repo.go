package repo

import (
	"context"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"github.com/parsa-dv/messenger/internal/model"
	"github.com/parsa-dv/messenger/internal/pkg/dbutil"
	appErr "github.com/parsa-dv/messenger/internal/pkg/errors"
)

var userFields = []string{"id", "username", "email", "password_hash", "profile_picture", "bio", "email_verified", "ctime"}

type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	data := map[string]interface{}{
		"username":        user.Username,
		"email":           user.Email,
		"password_hash":   user.PasswordHash,
		"profile_picture": user.ProfilePicture,
		"bio":             user.Bio,
		"email_verified":  user.EmailVerified,
		"ctime":           user.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("users", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	user.ID, err = result.LastInsertId()
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"id": userID})
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"username": username})
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"email": email})
}

// GetByUsernameOrEmail backs login and forgot-password, both of which accept
// either identifier in one field.
func (r *UserRepo) GetByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*model.User, error) {
	const q = `SELECT id, username, email, password_hash, profile_picture, bio, email_verified, ctime
FROM users WHERE username = ? OR email = ? LIMIT 1`
	var user model.User
	if err := r.db.GetContext(ctx, &user, q, usernameOrEmail, usernameOrEmail); err != nil {
		return nil, translateGetErr(err)
	}
	return &user, nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return r.update(ctx, userID, map[string]interface{}{"password_hash": passwordHash})
}

func (r *UserRepo) UpdateProfile(ctx context.Context, userID int64, email, bio string) error {
	err := r.update(ctx, userID, map[string]interface{}{"email": email, "bio": bio})
	if err != nil && dbutil.IsConflict(err) {
		return appErr.ErrConflict
	}
	return err
}

func (r *UserRepo) UpdatePicture(ctx context.Context, userID int64, path string) error {
	return r.update(ctx, userID, map[string]interface{}{"profile_picture": path})
}

func (r *UserRepo) ListOthers(ctx context.Context, viewerID int64) ([]*model.User, error) {
	where := map[string]interface{}{"id !=": viewerID, "_orderby": "id asc"}
	sqlStr, args, err := builder.BuildSelect("users", where, userFields)
	if err != nil {
		return nil, err
	}
	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, sqlStr, args...); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepo) SearchOthers(ctx context.Context, viewerID int64, query string) ([]*model.User, error) {
	const q = `SELECT id, username, email, password_hash, profile_picture, bio, email_verified, ctime
FROM users WHERE id != ? AND username LIKE ? ORDER BY id ASC`
	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, q, viewerID, "%"+query+"%"); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.User, error) {
	where["_limit"] = []uint{0, 1}
	sqlStr, args, err := builder.BuildSelect("users", where, userFields)
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := r.db.GetContext(ctx, &user, sqlStr, args...); err != nil {
		return nil, translateGetErr(err)
	}
	return &user, nil
}

func (r *UserRepo) update(ctx context.Context, userID int64, fields map[string]interface{}) error {
	sqlStr, args, err := builder.BuildUpdate("users", map[string]interface{}{"id": userID}, fields)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
