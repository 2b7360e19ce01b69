package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns into DateOnly. NULL values zero the time and return nil so that
// *DateOnly pointer fields can be set to nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON
// responses. Entitled gates the coach recommendation feature.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	Entitled  bool       `json:"entitled" db:"entitled"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// food is one row of the food catalog. Tags drive the time-of-day selection
// in the coach engine (breakfast, lunch, protein, snack, fruit, dinner).
type food struct {
	ID       int      `json:"id" db:"id"`
	Name     string   `json:"name" db:"name"`
	Tags     []string `json:"tags" db:"tags"`
	Calories int      `json:"calories" db:"calories"`
	Serving  string   `json:"serving" db:"serving"`
}

// exercise is one row of the exercise catalog. MET is the metabolic
// equivalent used to convert a calorie excess into minutes of activity.
type exercise struct {
	ID   int     `json:"id" db:"id"`
	Name string  `json:"name" db:"name"`
	MET  float64 `json:"met" db:"met"`
}

// coachUserSettings maps to coach_user_settings. One row per user holding the
// body profile, the goal configuration, and the derived calorie/macro targets.
type coachUserSettings struct {
	UserID         int `json:"user_id"          db:"user_id"`
	CalorieTarget  int `json:"calorie_target"   db:"calorie_target"`
	ProteinTargetG int `json:"protein_target_g" db:"protein_target_g"`
	CarbsTargetG   int `json:"carbs_target_g"   db:"carbs_target_g"`
	FatTargetG     int `json:"fat_target_g"     db:"fat_target_g"`

	// Profile fields — all nullable; zero-knowledge rows still work.
	Gender         *string   `json:"gender"          db:"gender"`
	DateOfBirth    *DateOnly `json:"date_of_birth"   db:"date_of_birth"`
	HeightCM       *float64  `json:"height_cm"       db:"height_cm"`
	WeightKG       *float64  `json:"weight_kg"       db:"weight_kg"`
	ActivityLevel  *string   `json:"activity_level"  db:"activity_level"`
	GoalType       string    `json:"goal_type"       db:"goal_type"`
	GoalAdjustment *float64  `json:"goal_adjustment" db:"goal_adjustment"`
	SetupComplete  bool      `json:"setup_complete"  db:"setup_complete"`

	// Computed fields — populated server-side from the profile; not stored.
	// db:"-" tells RowToStructByName to skip these during scanning.
	ComputedBMR    *int `json:"computed_bmr,omitempty"    db:"-"`
	ComputedTDEE   *int `json:"computed_tdee,omitempty"   db:"-"`
	ComputedTarget *int `json:"computed_target,omitempty" db:"-"`
}

// patchCoachSettingsRequest is the request body for PATCH /api/coach/user-settings.
// All fields are pointers — only non-nil fields get written to the database.
type patchCoachSettingsRequest struct {
	Gender         *string  `json:"gender"`
	DateOfBirth    *string  `json:"date_of_birth"` // YYYY-MM-DD string, stored as date
	HeightCM       *float64 `json:"height_cm"`
	WeightKG       *float64 `json:"weight_kg"`
	ActivityLevel  *string  `json:"activity_level"`
	GoalType       *string  `json:"goal_type"`
	GoalAdjustment *float64 `json:"goal_adjustment"`
	SetupComplete  *bool    `json:"setup_complete"`
}
