// Package api exposes the engine to the web layer over HTTP. Handlers
// translate between JSON and service requests; they hold no logic of
// their own. Authentication and authorization sit in front of this
// router and are not handled here.
package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rangelab/warpoint/internal/challenge"
	"github.com/rangelab/warpoint/internal/domain"
	"github.com/rangelab/warpoint/internal/errors"
	"github.com/rangelab/warpoint/internal/game"
	"github.com/rangelab/warpoint/internal/score"
	"github.com/rangelab/warpoint/internal/scoreboard"
	"github.com/rangelab/warpoint/internal/standings"
	"github.com/rangelab/warpoint/internal/team"
)

// reservedUsername is the administrative account filtered out of the
// public ranking views.
const reservedUsername = "admin"

type Config struct {
	Router     gin.IRouter
	Challenge  *challenge.Service
	Score      *score.Service
	Standings  *standings.Service
	Scoreboard *scoreboard.Service
	Team       *team.Service
	Game       *game.Service
}

type API struct {
	cs  *challenge.Service
	ss  *score.Service
	st  *standings.Service
	sb  *scoreboard.Service
	ts  *team.Service
	gs  *game.Service
	now func() time.Time
}

func New(c Config) *API {
	a := &API{
		cs:  c.Challenge,
		ss:  c.Score,
		st:  c.Standings,
		sb:  c.Scoreboard,
		ts:  c.Team,
		gs:  c.Game,
		now: time.Now,
	}

	r := c.Router.Group("/api")

	r.POST("/solves", a.RecordSolve)
	r.GET("/standings", a.Standings)
	r.GET("/scoreboard", a.Scoreboard)
	r.GET("/users/:id/score", a.UserScore)
	r.GET("/users/:id/place", a.UserPlace)

	r.GET("/challenges", a.ListChallenges)
	r.POST("/challenges", a.CreateChallenge)
	r.POST("/challenges/import", a.BulkImportChallenges)
	r.GET("/challenges/:id", a.GetChallenge)
	r.PUT("/challenges/:id", a.UpdateChallenge)
	r.DELETE("/challenges/:id", a.DeleteChallenge)
	r.GET("/challenges/:id/solvers", a.ChallengeSolvers)

	r.GET("/teams", a.ListTeams)
	r.POST("/teams", a.CreateTeam)
	r.DELETE("/teams/:id", a.DeleteTeam)
	r.GET("/teams/:id/denylist", a.DenyList)
	r.PUT("/teams/:id/denylist", a.UpdateDenyList)

	r.GET("/users", a.ListUsers)
	r.DELETE("/users/:id", a.DeleteUser)

	r.GET("/game", a.GameSession)
	r.GET("/game/clock", a.GameClock)
	r.POST("/game/start", a.StartGame)
	r.POST("/game/stop", a.StopGame)

	return a
}

func abortWithError(c *gin.Context, err error) {
	e := errors.Convert(err)
	c.AbortWithStatusJSON(e.HTTPStatusCode(), gin.H{"error": e.Message})
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("invalid id %q", c.Param("id"))))
		return 0, false
	}

	return id, true
}

type recordSolveRequest struct {
	UserID      int64  `json:"user_id" binding:"required"`
	Username    string `json:"username" binding:"required"`
	ChallengeID int64  `json:"challenge_id" binding:"required"`
	Answer      string `json:"answer"`
}

type recordSolveResponse struct {
	Outcome    string `json:"outcome"`
	Message    string `json:"message"`
	TotalScore int    `json:"total_score,omitempty"`
}

func (a *API) RecordSolve(c *gin.Context) {
	var req recordSolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	resp, err := a.ss.RecordSolve(c.Request.Context(), score.RecordSolveRequest{
		UserID:      req.UserID,
		Username:    req.Username,
		ChallengeID: req.ChallengeID,
		Answer:      req.Answer,
		SubmitTime:  a.now(),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, recordSolveResponse{
		Outcome:    string(resp.Outcome),
		Message:    solveMessage(resp),
		TotalScore: resp.TotalScore,
	})
}

func solveMessage(resp *score.RecordSolveResponse) string {
	switch resp.Outcome {
	case domain.OutcomeIncorrect:
		return "Incorrect answer for " + resp.Challenge.Name + ", try again"
	case domain.OutcomeAlreadySolved:
		return "Looks like you already solved this challenge"
	default:
		return "Correct"
	}
}

type standingRow struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Standings serves the public ranking. The reserved admin account is
// excluded here, not in the builder, so admin-facing views can still
// rank everyone.
func (a *API) Standings(c *gin.Context) {
	exclude := []string{reservedUsername}
	if v := c.Query("exclude"); v != "" {
		exclude = append(exclude, strings.Split(v, ",")...)
	}

	rows, err := a.st.Standings(c.Request.Context(), standings.StandingsRequest{
		ExcludeUsernames: exclude,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]standingRow, 0, len(rows))
	for _, st := range rows {
		out = append(out, standingRow(st))
	}

	c.JSON(http.StatusOK, gin.H{"standings": out})
}

func (a *API) Scoreboard(c *gin.Context) {
	board, err := a.sb.Get(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

func (a *API) UserScore(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	total, err := a.st.Score(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": id, "score": total})
}

func (a *API) UserPlace(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	if c.Query("numeric") == "true" {
		n, err := a.st.Place(ctx, id)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"user_id": id, "place": n})
		return
	}

	label, err := a.st.PlaceLabel(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": id, "place": label})
}
