// Package httpapi exposes the platform's REST API.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/star-labs/star-platform/internal/app"
	"github.com/star-labs/star-platform/internal/app/services/projects"
	"github.com/star-labs/star-platform/internal/app/storage"
	"github.com/star-labs/star-platform/internal/app/validation"
	"github.com/star-labs/star-platform/pkg/logger"
)

type handler struct {
	app *app.Application
	log *logger.Logger
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// renderError maps service failures onto the API's failure semantics:
// validation and eligibility problems are 400, missing entities 404,
// everything else 500.
func (h *handler) renderError(c *gin.Context, err error, notFoundMsg string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": verr.Fields})
	case errors.Is(err, projects.ErrNotEligible), errors.Is(err, storage.ErrInsufficientPoints):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
	default:
		h.log.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
}

// --- auth / users -----------------------------------------------------------

type connectRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
	ReferralCode  string `json:"referralCode"`
}

func (h *handler) connect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	u, err := h.app.Users.Connect(c.Request.Context(), req.WalletAddress, req.ReferralCode)
	if err != nil {
		h.renderError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *handler) currentUser(c *gin.Context) {
	walletAddress := c.Query("walletAddress")
	if walletAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress query parameter is required"})
		return
	}

	u, err := h.app.Users.GetByWallet(c.Request.Context(), walletAddress)
	if err != nil {
		h.renderError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *handler) userReferrals(c *gin.Context) {
	referrals, err := h.app.Users.Referrals(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, referrals)
}

func (h *handler) userProjects(c *gin.Context) {
	list, err := h.app.Projects.ListByCreator(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) userParticipations(c *gin.Context) {
	list, err := h.app.Projects.ParticipationsByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, list)
}

// --- points -----------------------------------------------------------------

type mintRequest struct {
	WalletAddress string  `json:"walletAddress" binding:"required"`
	XLMAmount     float64 `json:"xlmAmount" binding:"required"`
	TxHash        string  `json:"txHash"`
}

func (h *handler) mintPoints(c *gin.Context) {
	var req mintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.app.Points.Mint(c.Request.Context(), req.WalletAddress, req.XLMAmount, req.TxHash)
	if err != nil {
		h.renderError(c, err, "User not found. Please connect your wallet first.")
		return
	}
	c.JSON(http.StatusOK, result)
}

// --- projects ---------------------------------------------------------------

type createProjectRequest struct {
	WalletAddress           string  `json:"walletAddress" binding:"required"`
	Name                    string  `json:"name"`
	Symbol                  string  `json:"symbol"`
	Description             string  `json:"description"`
	LogoURL                 *string `json:"logoUrl"`
	TotalSupply             string  `json:"totalSupply"`
	Decimals                int     `json:"decimals"`
	AirdropPercent          int     `json:"airdropPercent"`
	CreatorPercent          int     `json:"creatorPercent"`
	LiquidityPercent        int     `json:"liquidityPercent"`
	MinimumLiquidity        string  `json:"minimumLiquidity"`
	HasVesting              bool    `json:"hasVesting"`
	VestingPeriodDays       *int    `json:"vestingPeriodDays"`
	ParticipationPeriodDays int     `json:"participationPeriodDays"`
	TwitterURL              *string `json:"twitterUrl"`
	TelegramURL             *string `json:"telegramUrl"`
	WebsiteURL              *string `json:"websiteUrl"`
	TxHash                  string  `json:"txHash"`
}

func (h *handler) createProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	created, err := h.app.Projects.Create(c.Request.Context(), projects.CreateInput{
		WalletAddress:           req.WalletAddress,
		Name:                    req.Name,
		Symbol:                  req.Symbol,
		Description:             req.Description,
		LogoURL:                 req.LogoURL,
		TotalSupply:             req.TotalSupply,
		Decimals:                req.Decimals,
		AirdropPercent:          req.AirdropPercent,
		CreatorPercent:          req.CreatorPercent,
		LiquidityPercent:        req.LiquidityPercent,
		MinimumLiquidity:        req.MinimumLiquidity,
		HasVesting:              req.HasVesting,
		VestingPeriodDays:       req.VestingPeriodDays,
		ParticipationPeriodDays: req.ParticipationPeriodDays,
		TwitterURL:              req.TwitterURL,
		TelegramURL:             req.TelegramURL,
		WebsiteURL:              req.WebsiteURL,
	})
	if err != nil {
		h.renderError(c, err, "User not found. Please connect your wallet first.")
		return
	}
	c.JSON(http.StatusOK, created)
}

func (h *handler) listProjects(c *gin.Context) {
	list, err := h.app.Projects.ListActive(c.Request.Context())
	if err != nil {
		h.renderError(c, err, "Project not found")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) getProject(c *gin.Context) {
	proj, err := h.app.Projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err, "Project not found")
		return
	}
	c.JSON(http.StatusOK, proj)
}

type participateRequest struct {
	WalletAddress string  `json:"walletAddress" binding:"required"`
	StarPoints    float64 `json:"starPoints" binding:"required"`
	TxHash        string  `json:"txHash"`
}

func (h *handler) participate(c *gin.Context) {
	var req participateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.app.Projects.Participate(c.Request.Context(), c.Param("id"), req.WalletAddress, req.StarPoints, req.TxHash)
	if err != nil {
		h.renderError(c, err, "Project or user not found")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) projectParticipations(c *gin.Context) {
	list, err := h.app.Projects.ParticipationsByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err, "Project not found")
		return
	}
	c.JSON(http.StatusOK, list)
}

// --- stats ------------------------------------------------------------------

func (h *handler) globalStats(c *gin.Context) {
	stats, err := h.app.Stats.Compute(c.Request.Context())
	if err != nil {
		h.renderError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, stats)
}
