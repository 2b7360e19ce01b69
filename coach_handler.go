package main

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// getGoalPreview runs the goal engine against the stored profile with a
// requested goal type, without persisting anything — used by the settings
// screen to show "what would my target be" before the user commits.
// GET /api/coach/goal-preview?goal_type=deficit&goal_adjustment=-0.2&round_to=10
func (h *Handler) getGoalPreview(c *gin.Context) {
	userID := c.GetInt("user_id")

	goalType := c.Query("goal_type")
	if goalType == "" {
		apiError(c, http.StatusBadRequest, "goal_type query param is required")
		return
	}

	s, err := queryOne[coachUserSettings](h.db, c,
		"SELECT * FROM coach_user_settings WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusNotFound, "settings not found")
		return
	}

	prof, ok := profileFromSettings(&s)
	if !ok {
		apiError(c, http.StatusBadRequest, "profile is incomplete")
		return
	}
	prof.GoalType = goalType
	prof.GoalAdjustment = nil

	var opts goalOptions
	if raw := c.Query("goal_adjustment"); raw != "" {
		adj, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid goal_adjustment, expected a number")
			return
		}
		prof.GoalAdjustment = &adj
	}
	if raw := c.Query("round_to"); raw != "" {
		step, err := strconv.Atoi(raw)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid round_to, expected an integer")
			return
		}
		opts.RoundTo = step
	}

	res, err := calculateCalorieGoal(prof, opts)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"goal":   res,
		"macros": computeMacroTargets(res.DailyCalorieTarget, prof.WeightKG),
	})
}

// getRecommendation runs the coach decision engine for the authenticated
// user's stored profile and target, with the day's consumed calories from
// the query string.
// GET /api/coach/recommendation?consumed=1800
//
// Non-entitled users get {"recommendation": null, "entitled": false} — the
// client shows an upsell instead. A null recommendation for an entitled user
// means the goal was hit exactly.
func (h *Handler) getRecommendation(c *gin.Context) {
	userID := c.GetInt("user_id")
	entitled := c.GetBool("entitled")

	raw := c.Query("consumed")
	if raw == "" {
		apiError(c, http.StatusBadRequest, "consumed query param is required")
		return
	}
	consumed, err := strconv.ParseFloat(raw, 64)
	if err != nil || consumed < 0 {
		apiError(c, http.StatusBadRequest, "consumed must be a non-negative number")
		return
	}

	if !entitled {
		c.JSON(http.StatusOK, gin.H{"recommendation": nil, "entitled": false})
		return
	}

	s, err := queryOne[coachUserSettings](h.db, c,
		"SELECT * FROM coach_user_settings WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusNotFound, "settings not found")
		return
	}

	var weightKG float64
	if s.WeightKG != nil {
		weightKG = *s.WeightKG
	}

	rec, err := decideRecommendation(c, weightKG, float64(s.CalorieTarget), consumed,
		entitled, time.Now(), h.catalog, h.catalog)
	if err != nil {
		switch {
		case errors.Is(err, errWeightNotConfigured):
			apiError(c, http.StatusBadRequest, "weight is not configured")
		case errors.Is(err, errCalorieTargetNotConfigured):
			apiError(c, http.StatusBadRequest, "calorie target is not configured")
		default:
			// Catalog failure — propagate the collaborator's message.
			log.Printf("[recommend] catalog error for user %d: %v", userID, err)
			apiError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendation": rec, "entitled": true})
}

// searchFoods is a catalog passthrough for the food picker UI.
// GET /api/coach/foods?tags=breakfast,protein&limit=5
func (h *Handler) searchFoods(c *gin.Context) {
	rawTags := c.Query("tags")
	if rawTags == "" {
		apiError(c, http.StatusBadRequest, "tags query param is required")
		return
	}
	tags := strings.Split(rawTags, ",")

	limit := foodCandidateLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 25 {
			apiError(c, http.StatusBadRequest, "limit must be an integer between 1 and 25")
			return
		}
		limit = n
	}

	foods, err := h.catalog.SearchFoodsByTags(c, tags, limit)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to search foods")
		return
	}

	c.JSON(http.StatusOK, foods)
}
