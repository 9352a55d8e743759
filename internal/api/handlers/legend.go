package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/RMahshie/wlansurvey/internal/raster"
	"github.com/RMahshie/wlansurvey/internal/storage"
	"github.com/RMahshie/wlansurvey/pkg/models"
)

// GetLegend renders the signal strength legend as a PNG
func GetLegend(ctx context.Context, req *models.LegendRequest) (*models.LegendResponse, error) {
	img, err := raster.Legend(req.Width, req.Height)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid legend size", err)
	}

	data, err := raster.EncodePNG(img)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to encode legend", err)
	}

	return &models.LegendResponse{ContentType: storage.ContentTypePNG, Body: data}, nil
}
