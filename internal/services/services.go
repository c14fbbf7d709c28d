// package services defines the HTTP clients for the processing backend
package services

import (
	"context"

	"github.com/desertthunder/propdesk/internal/shared"
)

// Backend binds an [APIService] to the configured upload and archival endpoints.
type Backend struct {
	api         *APIService
	uploadPath  string
	projectPath string
	field       string
}

// projectRequest is the JSON body of the archival endpoint.
type projectRequest struct {
	URL string `json:"url"`
}

// NewBackend creates a [Backend] from server and upload settings.
func NewBackend(api *APIService, server shared.ServerConfig, upload shared.UploadConfig) *Backend {
	field := upload.FieldName
	if field == "" {
		field = "file"
	}
	return &Backend{
		api:         api,
		uploadPath:  server.UploadPath,
		projectPath: server.ProjectPath,
		field:       field,
	}
}

// ProcessSheet uploads a spreadsheet and returns the processed result as-is.
func (b *Backend) ProcessSheet(ctx context.Context, filename string, data []byte) (*APIResponse, error) {
	return b.api.Upload(ctx, b.uploadPath, b.field, filename, data)
}

// ArchiveProject asks the backend to scrape url and returns the archive response as-is.
func (b *Backend) ArchiveProject(ctx context.Context, url string) (*APIResponse, error) {
	return b.api.PostJSON(ctx, b.projectPath, projectRequest{URL: url})
}

// Health fetches the backend root as a reachability check.
func (b *Backend) Health(ctx context.Context) (*APIResponse, error) {
	return b.api.Get(ctx, "/")
}
