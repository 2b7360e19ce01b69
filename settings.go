package main

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// profileFromSettings assembles a goalProfile from a settings row. Returns
// ok=false when any required profile field is still nil.
func profileFromSettings(s *coachUserSettings) (goalProfile, bool) {
	if s.Gender == nil || s.DateOfBirth == nil || s.HeightCM == nil ||
		s.WeightKG == nil || s.ActivityLevel == nil {
		return goalProfile{}, false
	}
	return goalProfile{
		Gender:         *s.Gender,
		BirthDate:      s.DateOfBirth.Format("2006-01-02"),
		HeightCM:       *s.HeightCM,
		WeightKG:       *s.WeightKG,
		ActivityLevel:  *s.ActivityLevel,
		GoalType:       s.GoalType,
		GoalAdjustment: s.GoalAdjustment,
	}, true
}

// populateComputedGoal fills the computed-only fields on s from the profile.
// No-ops if the profile is incomplete or fails validation.
func populateComputedGoal(s *coachUserSettings) {
	prof, ok := profileFromSettings(s)
	if !ok {
		return
	}
	res, err := calculateCalorieGoal(prof, goalOptions{})
	if err != nil {
		return
	}
	bmr := int(math.Round(res.BMR))
	tdee := int(math.Round(res.TDEE))
	s.ComputedBMR = &bmr
	s.ComputedTDEE = &tdee
	s.ComputedTarget = &res.DailyCalorieTarget
}

// getCoachSettings returns the coach settings for the authenticated user.
// Computed goal fields (bmr, tdee, target) are populated when the profile
// is complete.
// GET /api/coach/user-settings.
func (h *Handler) getCoachSettings(c *gin.Context) {
	userID := c.GetInt("user_id")

	s, err := queryOne[coachUserSettings](h.db, c,
		"SELECT * FROM coach_user_settings WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusNotFound, "settings not found")
		return
	}

	populateComputedGoal(&s)

	c.JSON(http.StatusOK, s)
}

// patchCoachSettings updates only the provided settings fields.
// PATCH /api/coach/user-settings. Uses pointer fields in the request body to
// distinguish "not provided" from zero — only non-nil fields get updated.
// When the patch touches a goal-relevant field and the profile is complete,
// the calorie target and macro targets are re-derived from first principles
// and persisted — the stored target is never compounded with stale state.
func (h *Handler) patchCoachSettings(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body patchCoachSettingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	// Validate enums before saving — an unknown value silently breaks all
	// future goal calculations with no visible error.
	if body.ActivityLevel != nil {
		if _, ok := activityMultipliers[*body.ActivityLevel]; !ok {
			apiError(c, http.StatusBadRequest, "activity_level must be one of: sedentary, light, moderate, high, very_high")
			return
		}
	}
	if body.GoalType != nil {
		if _, ok := defaultGoalAdjustments[*body.GoalType]; !ok {
			apiError(c, http.StatusBadRequest, "goal_type must be one of: deficit, maintenance, surplus")
			return
		}
	}
	if body.DateOfBirth != nil {
		if _, err := time.Parse("2006-01-02", *body.DateOfBirth); err != nil {
			apiError(c, http.StatusBadRequest, "invalid date_of_birth, expected YYYY-MM-DD")
			return
		}
	}

	// Numeric guardrails get the same pre-check treatment — a committed
	// out-of-range value would wedge every future goal derivation, and the
	// row must never hold a value the goal engine would reject.
	if body.HeightCM != nil && (*body.HeightCM < minHeightCM || *body.HeightCM > maxHeightCM) {
		apiError(c, http.StatusBadRequest, "height_cm must be between 100 and 250")
		return
	}
	if body.WeightKG != nil && (*body.WeightKG < minWeightKG || *body.WeightKG > maxWeightKG) {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 30 and 250")
		return
	}
	if body.GoalAdjustment != nil && (*body.GoalAdjustment < -0.30 || *body.GoalAdjustment > 0.30) {
		apiError(c, http.StatusBadRequest, "goal_adjustment must be between -0.30 and 0.30")
		return
	}

	// Validate the merged profile before writing anything, so a rejected
	// patch never leaves the row half-updated (e.g. a new weight committed
	// alongside a goal adjustment the new goal type forbids).
	s, err := queryOne[coachUserSettings](h.db, c,
		"SELECT * FROM coach_user_settings WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusNotFound, "settings not found")
		return
	}

	merged := s
	if body.Gender != nil {
		merged.Gender = body.Gender
	}
	if body.DateOfBirth != nil {
		t, _ := time.Parse("2006-01-02", *body.DateOfBirth)
		merged.DateOfBirth = &DateOnly{t}
	}
	if body.HeightCM != nil {
		merged.HeightCM = body.HeightCM
	}
	if body.WeightKG != nil {
		merged.WeightKG = body.WeightKG
	}
	if body.ActivityLevel != nil {
		merged.ActivityLevel = body.ActivityLevel
	}
	if body.GoalType != nil {
		merged.GoalType = *body.GoalType
		// A goal change re-derives with the new goal's default adjustment
		// unless the patch also carries an explicit one.
		if body.GoalAdjustment == nil {
			merged.GoalAdjustment = nil
		}
	}
	if body.GoalAdjustment != nil {
		merged.GoalAdjustment = body.GoalAdjustment
	}

	// Re-derive the calorie target and macros when the merged profile is
	// complete. A validation failure here rejects the whole patch.
	var derived *calorieGoalResult
	var macros macroTargets
	if prof, ok := profileFromSettings(&merged); ok {
		res, calcErr := calculateCalorieGoal(prof, goalOptions{})
		if calcErr != nil {
			apiError(c, http.StatusBadRequest, calcErr.Error())
			return
		}
		derived = &res
		macros = computeMacroTargets(res.DailyCalorieTarget, *merged.WeightKG)
	}

	// Build SET clause dynamically — only update fields the client actually sent
	setClauses := []string{}
	args := pgx.NamedArgs{"userID": userID}

	if body.Gender != nil {
		setClauses = append(setClauses, "gender = @gender")
		args["gender"] = *body.Gender
	}
	if body.DateOfBirth != nil {
		setClauses = append(setClauses, "date_of_birth = @dateOfBirth")
		args["dateOfBirth"] = *body.DateOfBirth
	}
	if body.HeightCM != nil {
		setClauses = append(setClauses, "height_cm = @heightCM")
		args["heightCM"] = *body.HeightCM
	}
	if body.WeightKG != nil {
		setClauses = append(setClauses, "weight_kg = @weightKG")
		args["weightKG"] = *body.WeightKG
	}
	if body.ActivityLevel != nil {
		setClauses = append(setClauses, "activity_level = @activityLevel")
		args["activityLevel"] = *body.ActivityLevel
	}
	if body.GoalType != nil {
		setClauses = append(setClauses, "goal_type = @goalType")
		args["goalType"] = *body.GoalType
	}
	if body.SetupComplete != nil {
		setClauses = append(setClauses, "setup_complete = @setupComplete")
		args["setupComplete"] = *body.SetupComplete
	}

	if len(setClauses) == 0 && body.GoalAdjustment == nil {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	// Exactly one goal_adjustment assignment per UPDATE: the resolved value
	// when a derivation ran, otherwise whatever the body implies.
	switch {
	case derived != nil:
		setClauses = append(setClauses,
			"goal_adjustment = @goalAdjustment",
			"calorie_target = @calorieTarget",
			"protein_target_g = @proteinTargetG",
			"carbs_target_g = @carbsTargetG",
			"fat_target_g = @fatTargetG")
		args["goalAdjustment"] = derived.GoalAdjustment
		args["calorieTarget"] = derived.DailyCalorieTarget
		args["proteinTargetG"] = macros.ProteinG
		args["carbsTargetG"] = macros.CarbsG
		args["fatTargetG"] = macros.FatG
	case body.GoalAdjustment != nil:
		setClauses = append(setClauses, "goal_adjustment = @goalAdjustment")
		args["goalAdjustment"] = *body.GoalAdjustment
	case body.GoalType != nil:
		// Goal changed on an incomplete profile: drop the old adjustment so
		// the eventual derivation starts from the new goal's default.
		setClauses = append(setClauses, "goal_adjustment = NULL")
	}

	query := "UPDATE coach_user_settings SET " +
		strings.Join(setClauses, ", ") +
		" WHERE user_id = @userID RETURNING *"

	s, err = queryOne[coachUserSettings](h.db, c, query, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "settings not found")
		} else {
			log.Printf("[patchCoachSettings] update failed for user %d: %v", userID, err)
			apiError(c, http.StatusInternalServerError, "failed to update settings")
		}
		return
	}

	populateComputedGoal(&s)

	c.JSON(http.StatusOK, s)
}
