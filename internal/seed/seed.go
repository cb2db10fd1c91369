package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	appModels "github.com/attendly/attendly/internal/app/models"
	appRepos "github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/pkg/auth"
)

// DemoPassword is the password of every demo account
const DemoPassword = "attendly-demo"

// Options controls what CreateDefaultData creates
type Options struct {
	AdminEmail    string
	AdminPassword string
	DemoData      bool
}

// CreateDefaultData creates the super admin account and, when requested and the
// store has no departments yet, a demo department to try the API with.
func CreateDefaultData(ctx context.Context, repos *appRepos.Repositories, opts Options, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	if err := createAdmin(ctx, repos, opts, lgr); err != nil {
		lgr.Error().Err(err).Msg("Error creating super admin")
		finalErr = errors.Join(finalErr, err)
	}

	if opts.DemoData {
		departments, err := repos.Departments.List(ctx)
		switch {
		case err != nil:
			finalErr = errors.Join(finalErr, err)
		case len(departments) > 0:
			lgr.Info().Int("departments", len(departments)).Msg("Departments exist, skipping demo data")
		default:
			if err := createDemoData(ctx, repos, lgr); err != nil {
				lgr.Error().Err(err).Msg("Error creating demo data")
				finalErr = errors.Join(finalErr, err)
			}
		}
	}

	lgr.Info().Msg("Default data check/creation complete.")
	return finalErr
}

func createAdmin(ctx context.Context, repos *appRepos.Repositories, opts Options, lgr zerolog.Logger) error {
	if opts.AdminEmail == "" || opts.AdminPassword == "" {
		lgr.Warn().Msg("Seed admin email or password not configured, skipping super admin")
		return nil
	}

	exists, err := repos.Users.ExistsByEmail(ctx, opts.AdminEmail, 0)
	if err != nil {
		return err
	}
	if exists {
		lgr.Debug().Str("email", opts.AdminEmail).Msg("Super admin already exists")
		return nil
	}

	hash, err := auth.HashPassword(opts.AdminPassword)
	if err != nil {
		return err
	}
	admin := &appModels.User{
		Email:     opts.AdminEmail,
		Password:  hash,
		FirstName: "Super",
		LastName:  "Admin",
		RoleType:  appModels.RoleSuperAdmin,
		IsActive:  true,
	}
	if err := repos.Users.Create(ctx, admin); err != nil {
		return err
	}
	lgr.Info().Str("email", admin.Email).Int64("userID", admin.ID).Msg("Super admin created")
	return nil
}

// demo builds the demo department step by step, remembering the first error
type demo struct {
	ctx   context.Context
	repos *appRepos.Repositories
	hash  string
	err   error
}

func (d *demo) user(email, first, last string, role appModels.RoleType, departmentID *int64) *appModels.User {
	u := &appModels.User{
		Email:        email,
		Password:     d.hash,
		FirstName:    first,
		LastName:     last,
		RoleType:     role,
		DepartmentID: departmentID,
		IsActive:     true,
	}
	d.do(func() error { return d.repos.Users.Create(d.ctx, u) })
	return u
}

func (d *demo) do(fn func() error) {
	if d.err == nil {
		d.err = fn()
	}
}

var demoNames = []string{
	"Aarav", "Bhavna", "Chetan", "Divya", "Esha", "Farhan", "Gauri", "Harsh",
	"Isha", "Jay", "Kavya", "Lokesh", "Meera", "Nikhil", "Ojas", "Pooja",
}

func createDemoData(ctx context.Context, repos *appRepos.Repositories, lgr zerolog.Logger) error {
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return err
	}
	d := &demo{ctx: ctx, repos: repos, hash: hash}

	dept := &appModels.Department{Name: "Computer Engineering", Code: "CE"}
	d.do(func() error { return repos.Departments.Create(ctx, dept) })
	if d.err != nil {
		return d.err
	}

	hod := d.user("hod.ce@attendly.local", "Sunita", "Kulkarni", appModels.RoleHOD, &dept.ID)
	anita := d.user("anita.patil@attendly.local", "Anita", "Patil", appModels.RoleFaculty, &dept.ID)
	rahul := d.user("rahul.deshmukh@attendly.local", "Rahul", "Deshmukh", appModels.RoleFaculty, &dept.ID)
	d.user("dev@attendly.local", "Dev", "Ops", appModels.RoleDeveloper, nil)
	d.do(func() error { return repos.Departments.SetHead(ctx, dept.ID, &hod.ID) })

	class := &appModels.Class{DepartmentID: dept.ID, Name: "Second Year", Year: 2}
	d.do(func() error { return repos.Classes.Create(ctx, class) })

	theory := &appModels.Subject{DepartmentID: dept.ID, Code: "CE201", Name: "Data Structures", Year: 2, Kind: appModels.SubjectTheory}
	practical := &appModels.Subject{DepartmentID: dept.ID, Code: "CE201L", Name: "Data Structures Lab", Year: 2, Kind: appModels.SubjectPractical}
	d.do(func() error { return repos.Subjects.Create(ctx, theory) })
	d.do(func() error { return repos.Subjects.Create(ctx, practical) })

	students := 0
	for i, name := range []string{"A", "B"} {
		division := &appModels.Division{ClassID: class.ID, Name: name, ClassTeacherID: &anita.ID}
		if i == 1 {
			division.ClassTeacherID = &rahul.ID
		}
		d.do(func() error { return repos.Divisions.Create(ctx, division) })

		labs := make([]*appModels.Lab, 2)
		for j := range labs {
			labs[j] = &appModels.Lab{DivisionID: division.ID, Name: fmt.Sprintf("%s%d", name, j+1), InChargeID: &rahul.ID}
			lab := labs[j]
			d.do(func() error { return repos.Labs.Create(ctx, lab) })
		}

		half := len(demoNames) / 2
		for roll, first := range demoNames[i*half : (i+1)*half] {
			student := &appModels.Student{
				DivisionID:   division.ID,
				LabID:        &labs[roll*2/half].ID,
				RollNumber:   roll + 1,
				EnrollmentNo: fmt.Sprintf("CE23%s%03d", name, roll+1),
				FirstName:    first,
				LastName:     "Demo",
			}
			d.do(func() error { return repos.Students.Create(ctx, student) })
			students++
		}

		d.do(func() error {
			return repos.Allocations.Create(ctx, &appModels.Allocation{FacultyID: anita.ID, SubjectID: theory.ID, DivisionID: division.ID})
		})
		for _, lab := range labs {
			d.do(func() error {
				return repos.Allocations.Create(ctx, &appModels.Allocation{FacultyID: rahul.ID, SubjectID: practical.ID, DivisionID: division.ID, LabID: &lab.ID})
			})
		}
	}
	if d.err != nil {
		return d.err
	}

	lgr.Info().
		Str("department", dept.Code).
		Int("students", students).
		Msg("Demo data created")
	return nil
}
