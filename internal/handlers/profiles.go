package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"flumers-backend/internal/gateway"
	"flumers-backend/internal/middleware"
	"flumers-backend/internal/models"
	"flumers-backend/internal/profiles"
	"flumers-backend/internal/supabase"
)

type ProfilesHandler struct {
	profileService *profiles.Service
	blobStore      gateway.BlobStore
}

func NewProfilesHandler(profileService *profiles.Service, blobStore gateway.BlobStore) *ProfilesHandler {
	return &ProfilesHandler{
		profileService: profileService,
		blobStore:      blobStore,
	}
}

// Onboard godoc
// @Summary     Complete onboarding
// @Description Creates the authenticated user's profile with a fixed role (brand or influencer) and a unique username.
// @Tags        profiles
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.OnboardRequest true "Profile fields"
// @Success     200 {object} models.Profile
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /profiles [post]
func (h *ProfilesHandler) Onboard(c *gin.Context) {
	actor := middleware.Actor(c)

	var req models.OnboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	profile, err := h.profileService.Onboard(c.Request.Context(), actor, req)
	if err != nil {
		writeProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetMe godoc
// @Summary     Get own profile
// @Tags        profiles
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.Profile
// @Failure     404 {object} models.ErrorResponse
// @Router      /profiles/me [get]
func (h *ProfilesHandler) GetMe(c *gin.Context) {
	profile, err := h.profileService.Get(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		writeProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetProfile godoc
// @Summary     Get a profile by uid
// @Tags        profiles
// @Produce     json
// @Security    Bearer
// @Param       uid path string true "User ID"
// @Success     200 {object} models.Profile
// @Failure     404 {object} models.ErrorResponse
// @Router      /profiles/{uid} [get]
func (h *ProfilesHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.Get(c.Request.Context(), c.Param("uid"))
	if err != nil {
		writeProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile godoc
// @Summary     Update own profile
// @Description Merges mutable profile fields. Role and username are fixed at onboarding.
// @Tags        profiles
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.UpdateProfileRequest true "Fields to update"
// @Success     200 {object} models.Profile
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /profiles/me [patch]
func (h *ProfilesHandler) UpdateProfile(c *gin.Context) {
	actor := middleware.Actor(c)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	profile, err := h.profileService.Update(c.Request.Context(), actor, req)
	if err != nil {
		writeProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UploadAvatar godoc
// @Summary     Upload a profile avatar
// @Tags        profiles
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       image formData file true "Avatar image"
// @Success     200 {object} models.FileInfo
// @Failure     400 {object} models.ErrorResponse
// @Router      /profiles/me/avatar [post]
func (h *ProfilesHandler) UploadAvatar(c *gin.Context) {
	actor := middleware.Actor(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "image file is required", Message: err.Error()})
		return
	}
	data, err := readMultipartFile(fileHeader)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read uploaded file", Message: err.Error()})
		return
	}

	path := supabase.AvatarPath(actor, uuid.NewString()+"-"+fileHeader.Filename)
	url, err := h.blobStore.Upload(c.Request.Context(), path, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to upload avatar", Message: err.Error()})
		return
	}

	if err := h.profileService.SetAvatar(c.Request.Context(), actor, url); err != nil {
		writeProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.FileInfo{
		Filename: fileHeader.Filename,
		URL:      url,
		Size:     fileHeader.Size,
	})
}

// Discover godoc
// @Summary     Discover influencers
// @Description Lists influencer profiles, filtered by category, platform and a minimum follower count, most-followed first.
// @Tags        profiles
// @Produce     json
// @Security    Bearer
// @Param       category query string false "Category filter"
// @Param       platform query string false "Platform filter"
// @Param       min_followers query int false "Minimum follower count"
// @Success     200 {array} models.Profile
// @Failure     400 {object} models.ErrorResponse
// @Router      /influencers [get]
func (h *ProfilesHandler) Discover(c *gin.Context) {
	minFollowers := 0
	if raw := c.Query("min_followers"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid min_followers"})
			return
		}
		minFollowers = n
	}

	list, err := h.profileService.Discover(c.Request.Context(), profiles.DiscoverFilter{
		Category:     c.Query("category"),
		Platform:     c.Query("platform"),
		MinFollowers: minFollowers,
	})
	if err != nil {
		writeProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func writeProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, profiles.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "profile not found"})
	case errors.Is(err, profiles.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "not allowed"})
	case errors.Is(err, profiles.ErrValidation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "validation failed", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal error", Message: err.Error()})
	}
}
