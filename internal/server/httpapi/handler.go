package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/skydrive/internal/common"
	"github.com/dmitrijs2005/skydrive/internal/models"
	"github.com/dmitrijs2005/skydrive/internal/server/services"
)

// uploadURLRequest is the upload-intent body. Validation happens at this
// boundary, before any state mutation.
type uploadURLRequest struct {
	OwnerID   string    `json:"ownerId" binding:"required"`
	FileName  string    `json:"fileName" binding:"required"`
	Size      int64     `json:"size" binding:"gte=0"`
	MimeType  string    `json:"mimeType" binding:"required"`
	Hash      string    `json:"hash" binding:"required"`
	CreatedAt time.Time `json:"createdAt" binding:"required"`
	UpdatedAt time.Time `json:"updatedAt" binding:"required"`
}

type markUploadedRequest struct {
	OwnerID string `json:"ownerId" binding:"required"`
	FileID  string `json:"fileId" binding:"required"`
}

func (a *API) uploadURL(c *gin.Context) {
	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ownerID, ok := requestOwner(c, req.OwnerID)
	if !ok {
		return
	}

	result, err := a.files.UploadIntent(c.Request.Context(), services.IntentRequest{
		OwnerID:   ownerID,
		FileName:  req.FileName,
		Size:      req.Size,
		MimeType:  req.MimeType,
		Hash:      req.Hash,
		CreatedAt: req.CreatedAt,
		UpdatedAt: req.UpdatedAt,
	})
	if err != nil {
		a.logger.Error(c.Request.Context(), "upload intent failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"fileId": result.FileID, "uploadUrl": result.UploadURL})
}

func (a *API) markUploaded(c *gin.Context) {
	var req markUploadedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ownerID, ok := requestOwner(c, req.OwnerID)
	if !ok {
		return
	}

	if err := a.files.MarkUploaded(c.Request.Context(), ownerID, req.FileID); err != nil {
		a.respondError(c, err, "mark uploaded failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "file marked as active"})
}

func (a *API) listFiles(c *gin.Context) {
	ownerID, ok := requestOwner(c, c.Query("ownerId"))
	if !ok {
		return
	}

	records, err := a.files.ListActive(c.Request.Context(), ownerID)
	if err != nil {
		a.respondError(c, err, "list files failed")
		return
	}
	if records == nil {
		records = []*models.FileRecord{}
	}

	c.JSON(http.StatusOK, records)
}

func (a *API) downloadURL(c *gin.Context) {
	ownerID, ok := requestOwner(c, c.Query("ownerId"))
	if !ok {
		return
	}

	fileID := c.Param("fileId")
	url, err := a.files.DownloadURL(c.Request.Context(), ownerID, fileID)
	if err != nil {
		a.respondError(c, err, "download url failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"fileId": fileID, "downloadUrl": url})
}

func (a *API) deleteFile(c *gin.Context) {
	ownerID, ok := requestOwner(c, c.Query("ownerId"))
	if !ok {
		return
	}

	fileID := c.Param("fileId")
	if err := a.files.Delete(c.Request.Context(), ownerID, fileID); err != nil {
		a.respondError(c, err, "delete failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "file deleted successfully"})
}

// syncChanges treats a missing or malformed since value as the zero time,
// so offline clients can always catch up (a stale cursor is not an error).
func (a *API) syncChanges(c *gin.Context) {
	ownerID, ok := requestOwner(c, c.Query("ownerId"))
	if !ok {
		return
	}

	var since time.Time
	if raw := c.Query("since"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			since = parsed
		}
	}

	delta, err := a.sync.GetChangesSince(c.Request.Context(), ownerID, since)
	if err != nil {
		a.respondError(c, err, "delta query failed")
		return
	}
	if delta.Added == nil {
		delta.Added = []*models.FileRecord{}
	}
	if delta.Modified == nil {
		delta.Modified = []*models.FileRecord{}
	}
	if delta.Removed == nil {
		delta.Removed = []*models.FileRef{}
	}

	c.JSON(http.StatusOK, delta)
}

func (a *API) respondError(c *gin.Context, err error, msg string) {
	if errors.Is(err, common.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	a.logger.Error(c.Request.Context(), msg, "error", err.Error())
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
