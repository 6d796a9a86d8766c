package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gazawayj/planetgis/internal/planet"
)

type InfoHandler struct {
	dataDir string
	dbOK    bool
}

func NewInfoHandler(dataDir string, dbOK bool) *InfoHandler {
	return &InfoHandler{dataDir: dataDir, dbOK: dbOK}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name    string   `json:"name" doc:"Service name"`
	Version string   `json:"version" doc:"Service version"`
	DataDir string   `json:"data_dir" doc:"Data directory path"`
	DB      bool     `json:"db" doc:"Whether the detection archive is available"`
	Planets []string `json:"planets" doc:"Supported planets"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	var planets []string
	for _, p := range planet.All() {
		planets = append(planets, string(p))
	}
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:    "planetgis",
		Version: "0.1.0",
		DataDir: h.dataDir,
		DB:      h.dbOK,
		Planets: planets,
	}}, nil
}
