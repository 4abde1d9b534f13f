package sandbox

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

type recordingExec struct {
	statements []string
}

func (r *recordingExec) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	r.statements = append(r.statements, sql)
	return pgconn.CommandTag{}, nil
}

func TestGenerate_Deterministic(t *testing.T) {
	cfg := DefaultSeedConfig()
	cfg.Seed = 42

	a := NewSeeder(cfg).Generate()
	b := NewSeeder(cfg).Generate()

	if len(a.Users) != len(b.Users) || len(a.Appointments) != len(b.Appointments) {
		t.Fatal("same seed must produce same volumes")
	}
	for i := range a.Users {
		if a.Users[i].FullName != b.Users[i].FullName {
			t.Fatalf("user %d name mismatch: %q vs %q", i, a.Users[i].FullName, b.Users[i].FullName)
		}
	}
	for i := range a.Doctors {
		if a.Doctors[i].Name != b.Doctors[i].Name {
			t.Fatalf("doctor %d name mismatch", i)
		}
	}
}

func TestGenerate_AlwaysIncludesAdmin(t *testing.T) {
	cfg := SeedConfig{Seed: 1}
	ds := NewSeeder(cfg).Generate()

	if len(ds.Users) != 1 {
		t.Fatalf("expected only the admin account, got %d users", len(ds.Users))
	}
	if ds.Users[0].Username != "admin" || ds.Users[0].Role != "admin" {
		t.Errorf("unexpected first account: %+v", ds.Users[0])
	}
}

func TestGenerate_ParticipantsShareUserID(t *testing.T) {
	cfg := DefaultSeedConfig()
	cfg.Seed = 7
	ds := NewSeeder(cfg).Generate()

	users := map[string]SeedUser{}
	for _, u := range ds.Users {
		users[u.ID.String()] = u
	}
	for _, p := range ds.Participants {
		if p.ID != p.UserID {
			t.Errorf("participant %s: profile id must equal login id", p.Name)
		}
		u, ok := users[p.UserID.String()]
		if !ok {
			t.Errorf("participant %s has no login account", p.Name)
			continue
		}
		if u.Role != "participant" {
			t.Errorf("participant login %s has role %s", u.Username, u.Role)
		}
	}
}

func TestGenerate_ReferentialIntegrity(t *testing.T) {
	cfg := DefaultSeedConfig()
	cfg.Seed = 99
	ds := NewSeeder(cfg).Generate()

	specs := map[string]bool{}
	for _, s := range ds.Specializations {
		specs[s.ID.String()] = true
	}
	for _, d := range ds.Doctors {
		if !specs[d.SpecializationID.String()] {
			t.Errorf("doctor %s references unknown specialization", d.Name)
		}
	}

	programs := map[string]bool{}
	for _, p := range ds.Programs {
		programs[p.ID.String()] = true
	}
	for _, e := range ds.Enrollments {
		if !programs[e.HealthProgramID.String()] {
			t.Error("enrollment references unknown program")
		}
	}
}

func TestApply_InsertsEveryEntity(t *testing.T) {
	cfg := DefaultSeedConfig()
	cfg.Seed = 5
	rec := &recordingExec{}

	result, err := NewSeeder(cfg).Apply(context.Background(), rec)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	expected := result.Users + len(specializationNames) + len(insuranceNames) +
		result.Doctors + result.Participants + len(categoryNames) +
		result.Programs + result.Enrollments + result.Appointments + result.Articles
	if len(rec.statements) != expected {
		t.Errorf("expected %d inserts, got %d", expected, len(rec.statements))
	}

	tables := []string{
		"INSERT INTO users", "INSERT INTO doctors", "INSERT INTO participants",
		"INSERT INTO health_programs", "INSERT INTO appointments", "INSERT INTO articles",
	}
	for _, table := range tables {
		found := false
		for _, stmt := range rec.statements {
			if strings.Contains(stmt, table) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no statement for %q", table)
		}
	}

	for _, stmt := range rec.statements {
		if !strings.Contains(stmt, "ON CONFLICT DO NOTHING") {
			t.Errorf("statement without conflict guard: %s", stmt)
		}
	}
}
