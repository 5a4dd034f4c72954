package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/rangelab/warpoint/internal/challenge"
	"github.com/rangelab/warpoint/internal/domain"
	"github.com/rangelab/warpoint/internal/errors"
	"github.com/rangelab/warpoint/internal/team"
)

type challengePayload struct {
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Answer      string `json:"answer" binding:"required"`
	Value       int    `json:"value"`
}

func (a *API) CreateChallenge(c *gin.Context) {
	var req challengePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	created, err := a.cs.CreateChallenge(c.Request.Context(), challenge.CreateChallengeRequest{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Answer:      req.Answer,
		Value:       req.Value,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (a *API) GetChallenge(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	ch, err := a.cs.GetChallenge(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ch)
}

func (a *API) ListChallenges(c *gin.Context) {
	list, err := a.cs.ListChallenges(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"challenges": list})
}

func (a *API) UpdateChallenge(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req challengePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	err := a.cs.UpdateChallenge(c.Request.Context(), domain.Challenge{
		ID:          id,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Answer:      req.Answer,
		Value:       req.Value,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteChallenge removes a challenge and its solves, then starts a new
// cache epoch: the deletion changes scores without going through the
// solve path.
func (a *API) DeleteChallenge(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := a.cs.DeleteChallenge(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}

	a.st.Invalidate()
	if err := a.sb.Rebuild(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (a *API) ChallengeSolvers(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	solvers, err := a.cs.Solvers(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"solvers": solvers})
}

type importPayload struct {
	Records []importRecord `json:"records" binding:"required"`
}

type importRecord struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description"`
	Answer      string `json:"answer"`
	Category    string `json:"category"`
}

func (a *API) BulkImportChallenges(c *gin.Context) {
	var req importPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	records := make([]challenge.ImportRecord, 0, len(req.Records))
	for _, r := range req.Records {
		records = append(records, challenge.ImportRecord(r))
	}

	res, err := a.cs.BulkImport(c.Request.Context(), records)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func decimalFromString(s string) (*decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("invalid security awareness %q", s))
	}

	return &d, nil
}

type createTeamRequest struct {
	Name              string `json:"name" binding:"required"`
	SecurityAwareness string `json:"security_awareness"`
}

func (a *API) CreateTeam(c *gin.Context) {
	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	svcReq := team.CreateTeamRequest{Name: req.Name}
	if req.SecurityAwareness != "" {
		d, err := decimalFromString(req.SecurityAwareness)
		if err != nil {
			abortWithError(c, err)
			return
		}
		svcReq.SecurityAwareness = d
	}

	created, err := a.ts.CreateTeam(c.Request.Context(), svcReq)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (a *API) ListTeams(c *gin.Context) {
	list, err := a.ts.ListTeams(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"teams": list})
}

func (a *API) DeleteTeam(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := a.ts.DeleteTeam(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (a *API) DenyList(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	list, err := a.ts.DenyList(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"denylist": list})
}

type updateDenyListRequest struct {
	// DenyList is the raw newline-separated submission from the
	// mitigations page.
	DenyList string `json:"denylist"`
}

func (a *API) UpdateDenyList(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req updateDenyListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	list, err := a.ts.UpdateDenyList(c.Request.Context(), id, req.DenyList)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"denylist": list})
}

func (a *API) ListUsers(c *gin.Context) {
	list, err := a.ts.ListUsers(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": list})
}

// DeleteUser removes a user and their solves, then refreshes the
// ranking caches the same way DeleteChallenge does.
func (a *API) DeleteUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := a.ts.DeleteUser(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}

	a.st.Invalidate()
	if err := a.sb.Rebuild(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (a *API) GameSession(c *gin.Context) {
	g, err := a.gs.Session(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, g)
}

func (a *API) GameClock(c *gin.Context) {
	now, err := a.gs.SimulatedNow(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"simulated_time": now})
}

func (a *API) StartGame(c *gin.Context) {
	g, err := a.gs.Start(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, g)
}

func (a *API) StopGame(c *gin.Context) {
	g, err := a.gs.Stop(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, g)
}
