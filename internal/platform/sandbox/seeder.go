// Package sandbox generates reproducible demo data for development
// environments: login accounts, a doctor directory, health programs, and a
// few appointments to click around in.
package sandbox

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the password every generated account logs in with.
const DemoPassword = "password123"

// SeedConfig controls the volume of generated demo data.
type SeedConfig struct {
	StaffCount                 int   `json:"staffCount"`
	DoctorCount                int   `json:"doctorCount"`
	ParticipantCount           int   `json:"participantCount"`
	ProgramCount               int   `json:"programCount"`
	AppointmentsPerParticipant int   `json:"appointmentsPerParticipant"`
	ArticleCount               int   `json:"articleCount"`
	Seed                       int64 `json:"seed"`
}

// DefaultSeedConfig returns volumes that make a demo feel lived-in without
// slowing the insert down.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		StaffCount:                 2,
		DoctorCount:                5,
		ParticipantCount:           20,
		ProgramCount:               4,
		AppointmentsPerParticipant: 2,
		ArticleCount:               6,
	}
}

// SeedResult summarizes what a seed run inserted.
type SeedResult struct {
	Users        int           `json:"users"`
	Doctors      int           `json:"doctors"`
	Participants int           `json:"participants"`
	Programs     int           `json:"programs"`
	Enrollments  int           `json:"enrollments"`
	Appointments int           `json:"appointments"`
	Articles     int           `json:"articles"`
	Duration     time.Duration `json:"duration"`
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

var (
	firstNames = []string{
		"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael",
		"Linda", "David", "Elizabeth", "William", "Barbara", "Richard",
		"Susan", "Joseph", "Jessica", "Thomas", "Sarah", "Daniel", "Karen",
		"Matthew", "Lisa", "Anthony", "Nancy", "Mark", "Betty", "Donald",
		"Sandra", "Steven", "Ashley", "Andrew", "Emily", "Joshua", "Donna",
		"Kenneth", "Michelle", "Kevin", "Carol", "Brian", "Amanda",
	}
	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
		"Davis", "Rodriguez", "Martinez", "Wilson", "Anderson", "Taylor",
		"Thomas", "Moore", "Jackson", "Martin", "Lee", "Thompson", "White",
		"Harris", "Clark", "Lewis", "Robinson", "Walker", "Young", "Allen",
		"King", "Wright", "Scott", "Nguyen", "Hill", "Green", "Adams",
		"Nelson", "Baker", "Hall", "Rivera", "Campbell", "Mitchell",
	}

	specializationNames = []string{
		"General Practice", "Pediatrics", "Cardiology", "Dermatology",
		"Orthopedics", "Internal Medicine", "Psychiatry", "Nutrition",
	}

	insuranceNames = []string{
		"BlueShield Basic", "HealthFirst Plus", "MediCare Complete",
		"Family Care Standard", "WellPoint Premium",
	}

	categoryNames = []string{
		"Chronic Care", "Preventive Health", "Mental Wellness", "Fitness",
	}

	programNames = []string{
		"Diabetes Self-Management", "Healthy Heart Walking Club",
		"Smoking Cessation Support", "Prenatal Care Series",
		"Stress Reduction Workshop", "Senior Mobility Classes",
		"Weight Management Circle", "Blood Pressure Monitoring",
	}

	articleTitles = []string{
		"Five Questions to Ask at Your Next Checkup",
		"Understanding Your Blood Pressure Numbers",
		"A Beginner's Guide to Meal Planning",
		"Why Annual Flu Shots Matter",
		"Sleep Hygiene for Busy Adults",
		"Managing Stress Without Medication",
		"What to Expect From a Health Program",
		"Walking: The Most Underrated Exercise",
	}

	weekdayPool = []string{
		"monday", "tuesday", "wednesday", "thursday", "friday",
	}
)

// DataGenerator produces deterministic demo records. The same seed always
// yields the same dataset.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator returns a generator. If seed is 0 a time-based seed is
// chosen.
func NewDataGenerator(seed int64) *DataGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DataGenerator{rng: rand.New(rand.NewSource(seed))}
}

func (g *DataGenerator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

func (g *DataGenerator) fullName() (string, string) {
	first := g.pick(firstNames)
	last := g.pick(lastNames)
	return first, last
}

func (g *DataGenerator) phone() string {
	return fmt.Sprintf("+1-%03d-%03d-%04d",
		200+g.rng.Intn(800), 200+g.rng.Intn(800), g.rng.Intn(10000))
}

func (g *DataGenerator) birthDate() time.Time {
	year := 1950 + g.rng.Intn(55)
	month := time.Month(1 + g.rng.Intn(12))
	day := 1 + g.rng.Intn(28)
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (g *DataGenerator) schedule() []string {
	days := append([]string(nil), weekdayPool...)
	g.rng.Shuffle(len(days), func(i, j int) { days[i], days[j] = days[j], days[i] })
	n := 2 + g.rng.Intn(3)
	return days[:n]
}

// SeedUser is a generated login account.
type SeedUser struct {
	ID       uuid.UUID
	Username string
	Email    string
	FullName string
	Role     string
}

// SeedDoctor is a generated directory entry.
type SeedDoctor struct {
	ID               uuid.UUID
	Name             string
	SpecializationID uuid.UUID
	Email            string
	Phone            string
	Schedule         []string
}

// SeedParticipant is a generated participant profile linked to a login.
type SeedParticipant struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Email       string
	Phone       string
	DateOfBirth time.Time
	InsuranceID uuid.UUID
}

// SeedNamed is a generated lookup row (specialization, insurance, category).
type SeedNamed struct {
	ID   uuid.UUID
	Name string
}

// SeedProgram is a generated health program.
type SeedProgram struct {
	ID         uuid.UUID
	Name       string
	CategoryID uuid.UUID
	StartDate  time.Time
	EndDate    *time.Time
}

// SeedEnrollment joins a participant to a program.
type SeedEnrollment struct {
	ID              uuid.UUID
	ParticipantID   uuid.UUID
	HealthProgramID uuid.UUID
}

// SeedAppointment is a generated appointment, some past, some future.
type SeedAppointment struct {
	ID            uuid.UUID
	ParticipantID uuid.UUID
	DoctorID      uuid.UUID
	Date          time.Time
	Time          string
	Status        string
}

// SeedArticle is a generated article, published or draft.
type SeedArticle struct {
	ID            uuid.UUID
	Title         string
	Content       string
	Author        string
	IsPublished   bool
	PublishedDate *time.Time
}

// Dataset is the full in-memory demo dataset before insertion.
type Dataset struct {
	Users           []SeedUser
	Specializations []SeedNamed
	Insurances      []SeedNamed
	Doctors         []SeedDoctor
	Participants    []SeedParticipant
	Categories      []SeedNamed
	Programs        []SeedProgram
	Enrollments     []SeedEnrollment
	Appointments    []SeedAppointment
	Articles        []SeedArticle
}

// Seeder builds a dataset and writes it to the database.
type Seeder struct {
	gen *DataGenerator
	cfg SeedConfig
}

// NewSeeder creates a Seeder with the given config.
func NewSeeder(cfg SeedConfig) *Seeder {
	return &Seeder{gen: NewDataGenerator(cfg.Seed), cfg: cfg}
}

// Generate builds the in-memory dataset. Always includes one admin account
// (admin / DemoPassword) so the demo is immediately usable.
func (s *Seeder) Generate() *Dataset {
	g := s.gen
	ds := &Dataset{}

	ds.Users = append(ds.Users, SeedUser{
		ID: uuid.New(), Username: "admin", Email: "admin@clinic.local",
		FullName: "Clinic Administrator", Role: "admin",
	})
	for i := 0; i < s.cfg.StaffCount; i++ {
		first, last := g.fullName()
		ds.Users = append(ds.Users, SeedUser{
			ID:       uuid.New(),
			Username: fmt.Sprintf("staff%d", i+1),
			Email:    fmt.Sprintf("staff%d@clinic.local", i+1),
			FullName: first + " " + last,
			Role:     "staff",
		})
	}

	for _, name := range specializationNames {
		ds.Specializations = append(ds.Specializations, SeedNamed{ID: uuid.New(), Name: name})
	}
	for _, name := range insuranceNames {
		ds.Insurances = append(ds.Insurances, SeedNamed{ID: uuid.New(), Name: name})
	}

	for i := 0; i < s.cfg.DoctorCount; i++ {
		first, last := g.fullName()
		spec := ds.Specializations[g.rng.Intn(len(ds.Specializations))]
		ds.Doctors = append(ds.Doctors, SeedDoctor{
			ID:               uuid.New(),
			Name:             "Dr. " + first + " " + last,
			SpecializationID: spec.ID,
			Email:            fmt.Sprintf("doctor%d@clinic.local", i+1),
			Phone:            g.phone(),
			Schedule:         g.schedule(),
		})
	}

	for i := 0; i < s.cfg.ParticipantCount; i++ {
		first, last := g.fullName()
		id := uuid.New()
		ds.Users = append(ds.Users, SeedUser{
			ID:       id,
			Username: fmt.Sprintf("participant%d", i+1),
			Email:    fmt.Sprintf("participant%d@clinic.local", i+1),
			FullName: first + " " + last,
			Role:     "participant",
		})
		ins := ds.Insurances[g.rng.Intn(len(ds.Insurances))]
		ds.Participants = append(ds.Participants, SeedParticipant{
			ID:          id,
			UserID:      id,
			Name:        first + " " + last,
			Email:       fmt.Sprintf("participant%d@clinic.local", i+1),
			Phone:       g.phone(),
			DateOfBirth: g.birthDate(),
			InsuranceID: ins.ID,
		})
	}

	for _, name := range categoryNames {
		ds.Categories = append(ds.Categories, SeedNamed{ID: uuid.New(), Name: name})
	}

	for i := 0; i < s.cfg.ProgramCount && i < len(programNames); i++ {
		cat := ds.Categories[g.rng.Intn(len(ds.Categories))]
		start := time.Now().AddDate(0, -g.rng.Intn(6), 0)
		ds.Programs = append(ds.Programs, SeedProgram{
			ID:         uuid.New(),
			Name:       programNames[i],
			CategoryID: cat.ID,
			StartDate:  start,
		})
	}

	for _, p := range ds.Participants {
		if len(ds.Programs) > 0 && g.rng.Intn(2) == 0 {
			prog := ds.Programs[g.rng.Intn(len(ds.Programs))]
			ds.Enrollments = append(ds.Enrollments, SeedEnrollment{
				ID: uuid.New(), ParticipantID: p.ID, HealthProgramID: prog.ID,
			})
		}
		for j := 0; j < s.cfg.AppointmentsPerParticipant; j++ {
			if len(ds.Doctors) == 0 {
				break
			}
			doc := ds.Doctors[g.rng.Intn(len(ds.Doctors))]
			// Half in the past, half in the future.
			offset := g.rng.Intn(30) + 1
			date := time.Now().AddDate(0, 0, offset)
			status := "scheduled"
			if j%2 == 0 {
				date = time.Now().AddDate(0, 0, -offset)
				status = "completed"
			}
			ds.Appointments = append(ds.Appointments, SeedAppointment{
				ID:            uuid.New(),
				ParticipantID: p.ID,
				DoctorID:      doc.ID,
				Date:          date,
				Time:          fmt.Sprintf("%02d:00", 9+g.rng.Intn(8)),
				Status:        status,
			})
		}
	}

	for i := 0; i < s.cfg.ArticleCount && i < len(articleTitles); i++ {
		first, last := g.fullName()
		published := i%3 != 2
		var publishedDate *time.Time
		if published {
			d := time.Now().AddDate(0, 0, -g.rng.Intn(90))
			publishedDate = &d
		}
		ds.Articles = append(ds.Articles, SeedArticle{
			ID:            uuid.New(),
			Title:         articleTitles[i],
			Content:       "Placeholder article body for the development sandbox.",
			Author:        first + " " + last,
			IsPublished:   published,
			PublishedDate: publishedDate,
		})
	}

	return ds
}

// Apply inserts the dataset. ON CONFLICT DO NOTHING keeps repeat runs from
// failing on the unique constraints.
func (s *Seeder) Apply(ctx context.Context, db execer) (*SeedResult, error) {
	start := time.Now()
	ds := s.Generate()

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}

	for _, u := range ds.Users {
		if _, err := db.Exec(ctx, `
			INSERT INTO users (id, username, email, full_name, password_hash, role)
			VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT DO NOTHING`,
			u.ID, u.Username, u.Email, u.FullName, string(hash), u.Role); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}
	for _, sp := range ds.Specializations {
		if _, err := db.Exec(ctx, `
			INSERT INTO specializations (id, name) VALUES ($1,$2)
			ON CONFLICT DO NOTHING`, sp.ID, sp.Name); err != nil {
			return nil, fmt.Errorf("seed specialization %s: %w", sp.Name, err)
		}
	}
	for _, ins := range ds.Insurances {
		if _, err := db.Exec(ctx, `
			INSERT INTO insurances (id, name) VALUES ($1,$2)
			ON CONFLICT DO NOTHING`, ins.ID, ins.Name); err != nil {
			return nil, fmt.Errorf("seed insurance %s: %w", ins.Name, err)
		}
	}
	for _, d := range ds.Doctors {
		schedule := "["
		for i, day := range d.Schedule {
			if i > 0 {
				schedule += ","
			}
			schedule += `"` + day + `"`
		}
		schedule += "]"
		if _, err := db.Exec(ctx, `
			INSERT INTO doctors (id, name, specialization_id, email, phone, schedule)
			VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT DO NOTHING`,
			d.ID, d.Name, d.SpecializationID, d.Email, d.Phone, schedule); err != nil {
			return nil, fmt.Errorf("seed doctor %s: %w", d.Name, err)
		}
	}
	for _, p := range ds.Participants {
		if _, err := db.Exec(ctx, `
			INSERT INTO participants (id, user_id, name, email, phone, date_of_birth, insurance_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7) ON CONFLICT DO NOTHING`,
			p.ID, p.UserID, p.Name, p.Email, p.Phone, p.DateOfBirth, p.InsuranceID); err != nil {
			return nil, fmt.Errorf("seed participant %s: %w", p.Name, err)
		}
	}
	for _, cat := range ds.Categories {
		if _, err := db.Exec(ctx, `
			INSERT INTO program_categories (id, name) VALUES ($1,$2)
			ON CONFLICT DO NOTHING`, cat.ID, cat.Name); err != nil {
			return nil, fmt.Errorf("seed category %s: %w", cat.Name, err)
		}
	}
	for _, p := range ds.Programs {
		if _, err := db.Exec(ctx, `
			INSERT INTO health_programs (id, name, category_id, start_date, end_date)
			VALUES ($1,$2,$3,$4,$5) ON CONFLICT DO NOTHING`,
			p.ID, p.Name, p.CategoryID, p.StartDate, p.EndDate); err != nil {
			return nil, fmt.Errorf("seed program %s: %w", p.Name, err)
		}
	}
	for _, e := range ds.Enrollments {
		if _, err := db.Exec(ctx, `
			INSERT INTO enrollments (id, participant_id, health_program_id)
			VALUES ($1,$2,$3) ON CONFLICT DO NOTHING`,
			e.ID, e.ParticipantID, e.HealthProgramID); err != nil {
			return nil, fmt.Errorf("seed enrollment: %w", err)
		}
	}
	for _, a := range ds.Appointments {
		if _, err := db.Exec(ctx, `
			INSERT INTO appointments (id, participant_id, doctor_id, date, time, status)
			VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT DO NOTHING`,
			a.ID, a.ParticipantID, a.DoctorID, a.Date, a.Time, a.Status); err != nil {
			return nil, fmt.Errorf("seed appointment: %w", err)
		}
	}
	for _, a := range ds.Articles {
		if _, err := db.Exec(ctx, `
			INSERT INTO articles (id, title, content, author, is_published, published_date)
			VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT DO NOTHING`,
			a.ID, a.Title, a.Content, a.Author, a.IsPublished, a.PublishedDate); err != nil {
			return nil, fmt.Errorf("seed article %s: %w", a.Title, err)
		}
	}

	return &SeedResult{
		Users:        len(ds.Users),
		Doctors:      len(ds.Doctors),
		Participants: len(ds.Participants),
		Programs:     len(ds.Programs),
		Enrollments:  len(ds.Enrollments),
		Appointments: len(ds.Appointments),
		Articles:     len(ds.Articles),
		Duration:     time.Since(start),
	}, nil
}

// Handler exposes the dev-only seed endpoint.
type Handler struct {
	db execer
}

// NewHandler creates a handler writing through the given connection.
func NewHandler(db execer) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes mounts the seed endpoint. Callers gate the group to
// development environments.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/seed", h.handleSeed)
}

func (h *Handler) handleSeed(c echo.Context) error {
	cfg := DefaultSeedConfig()
	if err := c.Bind(&cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	result, err := NewSeeder(cfg).Apply(c.Request().Context(), h.db)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
