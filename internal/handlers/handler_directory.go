package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/splitsettle/internal/core/domain"
	portssvc "github.com/SscSPs/splitsettle/internal/core/ports/services"
	"github.com/SscSPs/splitsettle/internal/dto"
	"github.com/SscSPs/splitsettle/internal/middleware"
)

// directoryHandler serves group membership and the acting user's profile.
type directoryHandler struct {
	groupService   portssvc.GroupSvcFacade
	profileService portssvc.ProfileSvcFacade
}

// RegisterDirectoryRoutes registers /groups/:groupID and /users/me.
func RegisterDirectoryRoutes(rg *gin.RouterGroup, groupService portssvc.GroupSvcFacade, profileService portssvc.ProfileSvcFacade, writeGuards ...gin.HandlerFunc) {
	h := &directoryHandler{groupService: groupService, profileService: profileService}

	rg.GET("/groups/:groupID", h.getGroup)
	rg.PUT("/groups/:groupID", guarded(writeGuards, h.saveGroup)...)
	rg.GET("/users/me", h.getProfile)
	rg.PUT("/users/me", guarded(writeGuards, h.updateProfile)...)
}

func (h *directoryHandler) getGroup(c *gin.Context) {
	groupID := c.Param("groupID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", groupID))

	group, err := h.groupService.GetGroup(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve group")
		return
	}
	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}

func (h *directoryHandler) saveGroup(c *gin.Context) {
	groupID := c.Param("groupID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", groupID))

	var req dto.SaveGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SaveGroup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	group, err := h.groupService.SaveGroup(c.Request.Context(), actingUserID, domain.Group{GroupID: groupID, Name: req.Name, Members: req.Members})
	if err != nil {
		respondError(c, logger, err, "Failed to save group")
		return
	}
	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}

func (h *directoryHandler) getProfile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.profileService.GetProfile(c.Request.Context(), actingUserID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve profile")
		return
	}
	c.JSON(http.StatusOK, dto.ToProfileResponse(user))
}

func (h *directoryHandler) updateProfile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateProfile", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.profileService.UpdateProfile(c.Request.Context(), domain.User{UserID: actingUserID, Name: req.Name, Email: req.Email})
	if err != nil {
		respondError(c, logger, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, dto.ToProfileResponse(user))
}
