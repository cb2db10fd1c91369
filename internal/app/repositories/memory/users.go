package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/pkg/apperrors"
)

type userRepository struct {
	db *Store
}

func (repo *userRepository) Create(_ context.Context, user *models.User) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	email := strings.ToLower(user.Email)
	for _, u := range repo.db.users {
		if u.Email == email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	if user.DepartmentID != nil {
		if _, ok := repo.db.departments[*user.DepartmentID]; !ok {
			return apperrors.ErrDepartmentNotFound
		}
	}

	now := repo.db.now()
	user.ID = repo.db.nextID()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	repo.db.users[user.ID] = &stored
	return nil
}

func (repo *userRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if u, ok := repo.db.users[id]; ok {
		usr := *u
		return &usr, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (repo *userRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range repo.db.users {
		if u.Email == email {
			usr := *u
			return &usr, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (repo *userRepository) List(_ context.Context, filter repositories.UserFilter) ([]*models.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	users := make([]*models.User, 0)
	for _, u := range repo.db.users {
		if filter.RoleType != nil && u.RoleType != *filter.RoleType {
			continue
		}
		if filter.DepartmentID != nil && !u.InDepartment(*filter.DepartmentID) {
			continue
		}
		if filter.ActiveOnly && !u.IsActive {
			continue
		}
		usr := *u
		users = append(users, &usr)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].FirstName != users[j].FirstName {
			return users[i].FirstName < users[j].FirstName
		}
		if users[i].LastName != users[j].LastName {
			return users[i].LastName < users[j].LastName
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (repo *userRepository) ExistsByEmail(_ context.Context, email string, excludeID int64) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range repo.db.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *userRepository) Update(_ context.Context, user *models.User) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	email := strings.ToLower(user.Email)
	for _, u := range repo.db.users {
		if u.Email == email && u.ID != user.ID {
			return apperrors.ErrEmailAlreadyExists
		}
	}

	orig.Email = email
	orig.FirstName = user.FirstName
	orig.LastName = user.LastName
	orig.RoleType = user.RoleType
	orig.DepartmentID = user.DepartmentID
	orig.IsActive = user.IsActive
	orig.UpdatedAt = repo.db.now()
	user.UpdatedAt = orig.UpdatedAt
	return nil
}

func (repo *userRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	u, ok := repo.db.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Password = passwordHash
	u.UpdatedAt = repo.db.now()
	return nil
}

func (repo *userRepository) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if u, ok := repo.db.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (repo *userRepository) Delete(_ context.Context, id int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	for _, a := range repo.db.allocations {
		if a.FacultyID == id {
			return apperrors.NewCustomError(apperrors.ErrHasRelations, "user has allocations or lectures and cannot be deleted")
		}
	}
	for _, l := range repo.db.lectures {
		if l.CreatedBy == id {
			return apperrors.NewCustomError(apperrors.ErrHasRelations, "user has allocations or lectures and cannot be deleted")
		}
	}

	for _, d := range repo.db.departments {
		clearRef(&d.HeadID, id)
	}
	for _, dv := range repo.db.divisions {
		clearRef(&dv.ClassTeacherID, id)
	}
	for _, l := range repo.db.labs {
		clearRef(&l.InChargeID, id)
	}
	delete(repo.db.users, id)
	return nil
}
