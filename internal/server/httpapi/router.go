// Package httpapi exposes the server's REST surface: the three-step upload
// protocol, listing, download URLs, deletion and the changes-since delta
// query. All /api routes sit behind the bearer middleware.
package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/skydrive/internal/logging"
	sc "github.com/dmitrijs2005/skydrive/internal/server/config"
	"github.com/dmitrijs2005/skydrive/internal/server/services"
)

type API struct {
	files  *services.FileService
	sync   *services.SyncService
	logger logging.Logger
	secret []byte
}

func NewAPI(files *services.FileService, sync *services.SyncService, logger logging.Logger, secretKey string) *API {
	return &API{
		files:  files,
		sync:   sync,
		logger: logger.With("module", "httpapi"),
		secret: []byte(secretKey),
	}
}

// Router assembles the gin engine: CORS for the web client, health probe,
// and the authenticated API group.
func (a *API) Router(cfg *sc.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	api := router.Group("/api", a.bearerAuth())
	{
		api.GET("/files", a.listFiles)
		api.POST("/files/upload-url", a.uploadURL)
		api.POST("/files/mark-uploaded", a.markUploaded)
		api.GET("/files/download-url/:fileId", a.downloadURL)
		api.DELETE("/files/:fileId", a.deleteFile)
		api.GET("/sync/changes", a.syncChanges)
	}

	return router
}
