package server

import (
	"github.com/royalcat/rquadtree/geom"
	"github.com/royalcat/rquadtree/quadtree"
)

//easyjson:json
type QueryResponse struct {
	Found   bool       `json:"found"`
	Entries geom.Rects `json:"entries"`
}

//easyjson:json
type QueryResponses []QueryResponse

//easyjson:json
type InsertResponse struct {
	Inserted int    `json:"inserted"`
	Rejected int    `json:"rejected"`
	Results  []bool `json:"results"`
}

// CreateLayerRequest is decoded with encoding/json, layer creation is not a hot path.
type CreateLayerRequest struct {
	Boundary geom.Rect `json:"boundary"`
	Capacity int       `json:"capacity"`
	MaxDepth int       `json:"max_depth"`
}

type LayerResponse struct {
	Name     string         `json:"name"`
	Boundary geom.Rect      `json:"boundary"`
	Capacity int            `json:"capacity"`
	MaxDepth int            `json:"max_depth"`
	Stats    quadtree.Stats `json:"stats"`
}
