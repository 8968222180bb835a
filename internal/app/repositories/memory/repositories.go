package memory

import (
	"context"
	"time"

	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/repositories"
)

var (
	_ repositories.IUserRepository              = (*userRepository)(nil)
	_ repositories.IApplicationRepository       = (*applicationRepository)(nil)
	_ repositories.IAdmissionExerciseRepository = (*exerciseRepository)(nil)
	_ repositories.IStudentRepository           = (*studentRepository)(nil)
	_ repositories.IStudentProgrammeRepository  = (*programmeRepository)(nil)
	_ repositories.IProgramRepository           = (*programRepository)(nil)
	_ repositories.ICourseRepository            = (*courseRepository)(nil)
	_ repositories.IRegistrationRepository      = (*registrationRepository)(nil)
	_ repositories.IAccessCodeRepository        = (*accessCodeRepository)(nil)
	_ repositories.IProjectRepository           = (*projectRepository)(nil)
	_ repositories.ISystemSettingRepository     = (*settingRepository)(nil)
)

type userRepository struct{ c conn }

func (r *userRepository) Create(_ context.Context, user *models.User) error {
	return r.c.write(func(t *tables) error {
		for _, u := range t.users {
			if u.Email == user.Email {
				return repositories.ErrEmailTaken
			}
		}
		now := time.Now()
		user.ID = t.nextID("users")
		user.CreatedAt, user.UpdatedAt = now, now
		t.users[user.ID] = *user
		return nil
	})
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	var out *models.User
	err := r.c.read(func(t *tables) error {
		u, ok := t.users[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	var out *models.User
	err := r.c.read(func(t *tables) error {
		for _, u := range t.users {
			if u.Email == email {
				u := u
				out = &u
				return nil
			}
		}
		return repositories.ErrNotFound
	})
	return out, err
}

func (r *userRepository) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	return r.c.write(func(t *tables) error {
		u, ok := t.users[id]
		if !ok {
			return repositories.ErrNotFound
		}
		u.LastLoginAt = &at
		t.users[id] = u
		return nil
	})
}

func (r *userRepository) Count(_ context.Context) (int64, error) {
	var n int64
	err := r.c.read(func(t *tables) error {
		n = int64(len(t.users))
		return nil
	})
	return n, err
}

type applicationRepository struct{ c conn }

func (r *applicationRepository) Create(_ context.Context, app *models.Application) error {
	return r.c.write(func(t *tables) error {
		for _, a := range t.applications {
			if a.Email == app.Email && a.AdmissionSession == app.AdmissionSession {
				return repositories.ErrApplicationExists
			}
			if a.ApplicationNumber == app.ApplicationNumber {
				return repositories.ErrApplicationNumberTaken
			}
		}
		now := time.Now()
		app.ID = t.nextID("applications")
		app.CreatedAt, app.UpdatedAt = now, now
		t.applications[app.ID] = *app
		return nil
	})
}

func (r *applicationRepository) find(match func(a models.Application) bool) (*models.Application, error) {
	var out *models.Application
	err := r.c.read(func(t *tables) error {
		for _, id := range sortedKeys(t.applications) {
			if a := t.applications[id]; match(a) {
				out = &a
				return nil
			}
		}
		return repositories.ErrNotFound
	})
	return out, err
}

func (r *applicationRepository) GetByID(_ context.Context, id int64) (*models.Application, error) {
	return r.find(func(a models.Application) bool { return a.ID == id })
}

func (r *applicationRepository) GetByNumber(_ context.Context, number string) (*models.Application, error) {
	return r.find(func(a models.Application) bool { return a.ApplicationNumber == number })
}

func (r *applicationRepository) GetByEmailAndSession(_ context.Context, email, session string) (*models.Application, error) {
	return r.find(func(a models.Application) bool { return a.Email == email && a.AdmissionSession == session })
}

func (r *applicationRepository) List(_ context.Context, f repositories.ApplicationListFilter) ([]*models.Application, int64, error) {
	var (
		page  []*models.Application
		total int64
	)
	err := r.c.read(func(t *tables) error {
		keys := sortedKeys(t.applications)
		matched := make([]*models.Application, 0)
		// Newest first, like the SQL ordering.
		for i := len(keys) - 1; i >= 0; i-- {
			a := t.applications[keys[i]]
			if f.Status != "" && a.Status != f.Status {
				continue
			}
			if f.AdmissionSession != "" && a.AdmissionSession != f.AdmissionSession {
				continue
			}
			matched = append(matched, &a)
		}
		total = int64(len(matched))
		start := len(matched)
		if f.Offset < uint64(len(matched)) {
			start = int(f.Offset)
		}
		end := len(matched)
		if f.Limit > 0 && start+f.Limit < end {
			end = start + f.Limit
		}
		page = matched[start:end]
		return nil
	})
	return page, total, err
}

func (r *applicationRepository) TransitionStatus(_ context.Context, number string, from, to models.ApplicationStatus, reviewedBy *int64, at time.Time) (bool, error) {
	changed := false
	err := r.c.write(func(t *tables) error {
		for id, a := range t.applications {
			if a.ApplicationNumber != number {
				continue
			}
			if a.Status != from {
				return nil
			}
			a.Status = to
			a.ReviewedBy = reviewedBy
			a.StatusUpdatedAt = &at
			a.UpdatedAt = at
			t.applications[id] = a
			changed = true
			return nil
		}
		return nil
	})
	return changed, err
}

func (r *applicationRepository) SetInterviewDate(_ context.Context, id int64, at time.Time) error {
	return r.c.write(func(t *tables) error {
		a, ok := t.applications[id]
		if !ok {
			return repositories.ErrNotFound
		}
		a.InterviewScheduledFor = &at
		a.UpdatedAt = time.Now()
		t.applications[id] = a
		return nil
	})
}

type exerciseRepository struct{ c conn }

func (r *exerciseRepository) Upsert(_ context.Context, ex *models.AdmissionExercise) error {
	return r.c.write(func(t *tables) error {
		now := time.Now()
		if existing, ok := t.exercises[ex.ApplicationNumber]; ok {
			ex.ID = existing.ID
			ex.CreatedAt = existing.CreatedAt
		} else {
			ex.ID = t.nextID("admission_exercises")
			ex.CreatedAt = now
		}
		ex.UpdatedAt = now
		stored := *ex
		stored.Components = cloneComponents(ex.Components)
		t.exercises[ex.ApplicationNumber] = stored
		return nil
	})
}

func (r *exerciseRepository) GetByApplicationNumber(_ context.Context, number string) (*models.AdmissionExercise, error) {
	var out *models.AdmissionExercise
	err := r.c.read(func(t *tables) error {
		ex, ok := t.exercises[number]
		if !ok {
			return repositories.ErrNotFound
		}
		ex.Components = cloneComponents(ex.Components)
		out = &ex
		return nil
	})
	return out, err
}

type studentRepository struct{ c conn }

func (r *studentRepository) Create(_ context.Context, s *models.Student) error {
	return r.c.write(func(t *tables) error {
		for _, existing := range t.students {
			if s.ApplicationID != nil && existing.ApplicationID != nil && *existing.ApplicationID == *s.ApplicationID {
				return repositories.ErrStudentExists
			}
			if existing.MatricNumber == s.MatricNumber {
				return repositories.ErrMatricNumberTaken
			}
		}
		now := time.Now()
		s.ID = t.nextID("students")
		s.CreatedAt, s.UpdatedAt = now, now
		t.students[s.ID] = *s
		return nil
	})
}

func (r *studentRepository) find(match func(s models.Student) bool) (*models.Student, error) {
	var out *models.Student
	err := r.c.read(func(t *tables) error {
		for _, id := range sortedKeys(t.students) {
			if s := t.students[id]; match(s) {
				out = &s
				return nil
			}
		}
		return repositories.ErrNotFound
	})
	return out, err
}

func (r *studentRepository) GetByID(_ context.Context, id int64) (*models.Student, error) {
	return r.find(func(s models.Student) bool { return s.ID == id })
}

func (r *studentRepository) GetByApplicationID(_ context.Context, applicationID int64) (*models.Student, error) {
	return r.find(func(s models.Student) bool { return s.ApplicationID != nil && *s.ApplicationID == applicationID })
}

func (r *studentRepository) GetByMatricNumber(_ context.Context, matric string) (*models.Student, error) {
	return r.find(func(s models.Student) bool { return s.MatricNumber == matric })
}

func (r *studentRepository) MarkGraduated(_ context.Context, id int64, at time.Time) (bool, error) {
	changed := false
	err := r.c.write(func(t *tables) error {
		s, ok := t.students[id]
		if !ok || s.Status == models.StudentGraduated {
			return nil
		}
		s.Status = models.StudentGraduated
		s.GraduatedAt = &at
		s.UpdatedAt = at
		t.students[id] = s
		changed = true
		return nil
	})
	return changed, err
}

func (r *studentRepository) UpdatePersonalInfo(_ context.Context, id int64, firstName, lastName string, phone *string) error {
	return r.c.write(func(t *tables) error {
		s, ok := t.students[id]
		if !ok {
			return repositories.ErrNotFound
		}
		s.FirstName, s.LastName, s.Phone = firstName, lastName, phone
		s.PersonalInfoConfirmed = true
		s.UpdatedAt = time.Now()
		t.students[id] = s
		return nil
	})
}

type programmeRepository struct{ c conn }

func (r *programmeRepository) Create(_ context.Context, p *models.StudentProgramme) error {
	return r.c.write(func(t *tables) error {
		for _, existing := range t.programmes {
			if existing.StudentID == p.StudentID && existing.ProgramID == p.ProgramID {
				return repositories.ErrProgrammeExists
			}
		}
		now := time.Now()
		p.ID = t.nextID("student_programmes")
		p.CreatedAt, p.UpdatedAt = now, now
		t.programmes[p.ID] = *p
		return nil
	})
}

func (r *programmeRepository) ListByStudent(_ context.Context, studentID int64) ([]*models.StudentProgramme, error) {
	out := make([]*models.StudentProgramme, 0)
	err := r.c.read(func(t *tables) error {
		for _, id := range sortedKeys(t.programmes) {
			if p := t.programmes[id]; p.StudentID == studentID {
				out = append(out, &p)
			}
		}
		return nil
	})
	return out, err
}

func (r *programmeRepository) AdvanceStatus(_ context.Context, studentID int64, from []models.ProgrammeStatus, to models.ProgrammeStatus, endDate *time.Time) (int64, error) {
	var n int64
	err := r.c.write(func(t *tables) error {
		for id, p := range t.programmes {
			if p.StudentID != studentID || !containsStatus(from, p.Status) {
				continue
			}
			p.Status = to
			if endDate != nil {
				end := *endDate
				p.EndDate = &end
			}
			p.UpdatedAt = time.Now()
			t.programmes[id] = p
			n++
		}
		return nil
	})
	return n, err
}

func containsStatus(list []models.ProgrammeStatus, s models.ProgrammeStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type programRepository struct{ c conn }

func (r *programRepository) Create(_ context.Context, p *models.Program) error {
	return r.c.write(func(t *tables) error {
		for _, existing := range t.programs {
			if existing.Code == p.Code {
				return repositories.ErrProgramCodeTaken
			}
		}
		now := time.Now()
		p.ID = t.nextID("programs")
		p.CreatedAt, p.UpdatedAt = now, now
		t.programs[p.ID] = *p
		return nil
	})
}

func (r *programRepository) GetByID(_ context.Context, id int64) (*models.Program, error) {
	var out *models.Program
	err := r.c.read(func(t *tables) error {
		p, ok := t.programs[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *programRepository) List(_ context.Context) ([]*models.Program, error) {
	out := make([]*models.Program, 0)
	err := r.c.read(func(t *tables) error {
		for _, id := range sortedKeys(t.programs) {
			p := t.programs[id]
			out = append(out, &p)
		}
		return nil
	})
	return out, err
}

type courseRepository struct{ c conn }

func (r *courseRepository) Create(_ context.Context, c *models.Course) error {
	return r.c.write(func(t *tables) error {
		if _, ok := t.programs[c.ProgramID]; !ok {
			return repositories.ErrNotFound
		}
		for _, existing := range t.courses {
			if existing.Code == c.Code {
				return repositories.ErrCourseCodeTaken
			}
		}
		now := time.Now()
		c.ID = t.nextID("courses")
		c.CreatedAt, c.UpdatedAt = now, now
		stored := *c
		stored.LecturerIDs = cloneIDs(c.LecturerIDs)
		t.courses[c.ID] = stored
		return nil
	})
}

func (r *courseRepository) GetByID(_ context.Context, id int64) (*models.Course, error) {
	var out *models.Course
	err := r.c.read(func(t *tables) error {
		c, ok := t.courses[id]
		if !ok {
			return repositories.ErrNotFound
		}
		c.LecturerIDs = cloneIDs(c.LecturerIDs)
		out = &c
		return nil
	})
	return out, err
}

func (r *courseRepository) List(_ context.Context, programID *int64) ([]*models.Course, error) {
	out := make([]*models.Course, 0)
	err := r.c.read(func(t *tables) error {
		for _, id := range sortedKeys(t.courses) {
			c := t.courses[id]
			if programID != nil && c.ProgramID != *programID {
				continue
			}
			c.LecturerIDs = cloneIDs(c.LecturerIDs)
			out = append(out, &c)
		}
		return nil
	})
	return out, err
}

func (r *courseRepository) AssignLecturer(_ context.Context, courseID, lecturerID int64) error {
	return r.c.write(func(t *tables) error {
		c, ok := t.courses[courseID]
		if !ok {
			return repositories.ErrNotFound
		}
		if c.TaughtBy(lecturerID) {
			return nil
		}
		ids := cloneIDs(c.LecturerIDs)
		c.LecturerIDs = append(ids, lecturerID)
		t.courses[courseID] = c
		return nil
	})
}

type registrationRepository struct{ c conn }

func (r *registrationRepository) Create(_ context.Context, reg *models.Registration) error {
	return r.c.write(func(t *tables) error {
		for _, existing := range t.registrations {
			if existing.StudentID == reg.StudentID && existing.CourseID == reg.CourseID &&
				existing.Session == reg.Session && existing.Semester == reg.Semester {
				return repositories.ErrRegistrationExists
			}
		}
		now := time.Now()
		reg.ID = t.nextID("course_registrations")
		reg.CreatedAt, reg.UpdatedAt = now, now
		t.registrations[reg.ID] = *reg
		return nil
	})
}

func (r *registrationRepository) GetByID(_ context.Context, id int64) (*models.Registration, error) {
	var out *models.Registration
	err := r.c.read(func(t *tables) error {
		reg, ok := t.registrations[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &reg
		return nil
	})
	return out, err
}

func (r *registrationRepository) ListByStudent(_ context.Context, studentID int64) ([]*models.Registration, error) {
	out := make([]*models.Registration, 0)
	err := r.c.read(func(t *tables) error {
		for _, id := range sortedKeys(t.registrations) {
			if reg := t.registrations[id]; reg.StudentID == studentID {
				out = append(out, &reg)
			}
		}
		return nil
	})
	return out, err
}

func (r *registrationRepository) CountByStudent(_ context.Context, studentID int64) (int64, error) {
	var n int64
	err := r.c.read(func(t *tables) error {
		for _, reg := range t.registrations {
			if reg.StudentID == studentID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *registrationRepository) Withdraw(_ context.Context, id int64, at time.Time) (bool, error) {
	changed := false
	err := r.c.write(func(t *tables) error {
		reg, ok := t.registrations[id]
		if !ok || reg.Status != models.RegistrationRegistered || reg.Grade != nil {
			return nil
		}
		reg.Status = models.RegistrationWithdrawn
		reg.UpdatedAt = at
		t.registrations[id] = reg
		changed = true
		return nil
	})
	return changed, err
}

func (r *registrationRepository) RecordResult(_ context.Context, id int64, score float64, grade models.Grade, recordedBy *int64, at time.Time) (bool, error) {
	changed := false
	err := r.c.write(func(t *tables) error {
		reg, ok := t.registrations[id]
		if !ok || reg.Status != models.RegistrationRegistered {
			return nil
		}
		reg.Score = &score
		reg.Grade = &grade
		reg.ResultRecordedBy = recordedBy
		reg.ResultRecordedAt = &at
		reg.UpdatedAt = at
		t.registrations[id] = reg
		changed = true
		return nil
	})
	return changed, err
}

func (r *registrationRepository) GradedForStudent(_ context.Context, studentID int64) ([]models.GradedRegistration, error) {
	out := make([]models.GradedRegistration, 0)
	err := r.c.read(func(t *tables) error {
		for _, id := range sortedKeys(t.registrations) {
			reg := t.registrations[id]
			if reg.StudentID != studentID || reg.Grade == nil {
				continue
			}
			course, ok := t.courses[reg.CourseID]
			if !ok {
				continue
			}
			grade := *reg.Grade
			out = append(out, models.GradedRegistration{
				RegistrationID: reg.ID,
				CourseID:       reg.CourseID,
				Session:        reg.Session,
				Semester:       reg.Semester,
				CreditHours:    course.CreditHours,
				Grade:          &grade,
			})
		}
		return nil
	})
	return out, err
}

type accessCodeRepository struct{ c conn }

func (r *accessCodeRepository) Create(_ context.Context, ac *models.AccessCode) error {
	return r.c.write(func(t *tables) error {
		if _, ok := t.accessCodes[ac.Code]; ok {
			return repositories.ErrAccessCodeTaken
		}
		now := time.Now()
		ac.ID = t.nextID("project_access_codes")
		ac.CreatedAt, ac.UpdatedAt = now, now
		stored := *ac
		stored.AccessTo = cloneIDs(ac.AccessTo)
		t.accessCodes[ac.Code] = stored
		return nil
	})
}

func (r *accessCodeRepository) GetByCode(_ context.Context, code string) (*models.AccessCode, error) {
	var out *models.AccessCode
	err := r.c.read(func(t *tables) error {
		ac, ok := t.accessCodes[code]
		if !ok {
			return repositories.ErrNotFound
		}
		ac.AccessTo = cloneIDs(ac.AccessTo)
		out = &ac
		return nil
	})
	return out, err
}

func (r *accessCodeRepository) IncrementUsage(_ context.Context, code string) ([]int64, bool, error) {
	var (
		accessTo []int64
		ok       bool
	)
	err := r.c.write(func(t *tables) error {
		ac, found := t.accessCodes[code]
		if !found || !ac.GrantsAccess() {
			return nil
		}
		ac.UsageCount++
		ac.UpdatedAt = time.Now()
		t.accessCodes[code] = ac
		accessTo, ok = cloneIDs(ac.AccessTo), true
		return nil
	})
	return accessTo, ok, err
}

func (r *accessCodeRepository) SetActive(_ context.Context, code string, active bool) (bool, error) {
	changed := false
	err := r.c.write(func(t *tables) error {
		ac, ok := t.accessCodes[code]
		if !ok {
			return nil
		}
		ac.IsActive = active
		ac.UpdatedAt = time.Now()
		t.accessCodes[code] = ac
		changed = true
		return nil
	})
	return changed, err
}

type projectRepository struct{ c conn }

func (r *projectRepository) Create(_ context.Context, p *models.Project) error {
	return r.c.write(func(t *tables) error {
		p.ID = t.nextID("projects")
		p.CreatedAt = time.Now()
		t.projects[p.ID] = *p
		return nil
	})
}

func (r *projectRepository) ListByIDs(_ context.Context, ids []int64) ([]*models.Project, error) {
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := make([]*models.Project, 0, len(ids))
	err := r.c.read(func(t *tables) error {
		for _, id := range sortedKeys(t.projects) {
			if wanted[id] {
				p := t.projects[id]
				out = append(out, &p)
			}
		}
		return nil
	})
	return out, err
}

type settingRepository struct{ c conn }

func (r *settingRepository) Get(_ context.Context, key string) (*models.SystemSetting, error) {
	var out *models.SystemSetting
	err := r.c.read(func(t *tables) error {
		s, ok := t.settings[key]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &s
		return nil
	})
	return out, err
}

func (r *settingRepository) Put(_ context.Context, key, value string, expectedVersion *int64, updatedBy *int64, at time.Time) (*models.SystemSetting, error) {
	var out *models.SystemSetting
	err := r.c.write(func(t *tables) error {
		current, exists := t.settings[key]
		if expectedVersion != nil {
			var have int64
			if exists {
				have = current.Version
			}
			if have != *expectedVersion {
				return repositories.ErrVersionMismatch
			}
		}
		next := models.SystemSetting{
			Key:       key,
			Value:     value,
			Version:   current.Version + 1,
			UpdatedBy: updatedBy,
			UpdatedAt: at,
		}
		t.settings[key] = next
		out = &next
		return nil
	})
	return out, err
}
