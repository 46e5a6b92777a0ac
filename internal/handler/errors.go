package handler

import (
	"Go_Site/internal/dto"
	"Go_Site/internal/service"
	"Go_Site/utils"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps service errors to HTTP statuses.
func statusFor(err error) int {
	var (
		notFound  *service.NotFoundError
		conflict  *service.ConflictError
		duplicate *service.DuplicateNameError
		remote    *service.RemoteStorageError
		partial   *service.PartialFailureError
	)
	// partial and remote failures wrap causes that would otherwise match below
	switch {
	case errors.As(err, &partial):
		return http.StatusInternalServerError
	case errors.As(err, &remote):
		return http.StatusBadGateway
	case errors.As(err, &conflict), errors.As(err, &duplicate),
		errors.Is(err, service.ErrAlreadyInGallery), errors.Is(err, service.ErrReconcilePending):
		return http.StatusConflict
	case errors.As(err, &notFound), errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAssetBusy):
		return http.StatusLocked
	case errors.Is(err, service.ErrQuotaExceeded), errors.Is(err, service.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidGallery),
		errors.Is(err, service.ErrUnsupportedImage),
		errors.Is(err, service.ErrIdentifierReused):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err in the standard envelope, attaching the usage
// list for conflicts and the reconcile task for partial failures.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	var data interface{}
	var conflict *service.ConflictError
	var partial *service.PartialFailureError
	switch {
	case errors.As(err, &conflict):
		data = dto.ConflictResponse{AssetID: conflict.AssetID, Usage: conflict.Usage}
	case errors.As(err, &partial):
		data = dto.PartialFailureResponse{AssetID: partial.AssetID, Op: partial.Op, TaskID: partial.TaskID}
	}
	if status >= http.StatusInternalServerError {
		utils.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}
	utils.FailWithStatus(c, status, err, data)
}

func badRequest(c *gin.Context, err error) {
	utils.FailWithStatus(c, http.StatusBadRequest, errors.New("invalid request: "+err.Error()), nil)
}
