package controllers

import (
	"net/http"

	"github.com/angelmondragon/itempurchase/api/responses"
	"github.com/angelmondragon/itempurchase/api/validators"
	"github.com/angelmondragon/itempurchase/internal/images"
	pkgerrors "github.com/angelmondragon/itempurchase/pkg/errors"
	"github.com/angelmondragon/itempurchase/pkg/logger"
)

const imageQueryMaxLength = 120

type imageSearchResponse struct {
	Query    string `json:"query"`
	ImageURL string `json:"image_url"`
}

// ImageSearch returns a representative image url for the query, or "" when none matched.
func ImageSearch(svc images.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "images service unavailable"))
			return
		}

		query := validators.QueryString(r, "query", imageQueryMaxLength)
		if query == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "query is required").WithDetails(map[string]string{"query": "is required"}))
			return
		}

		imageURL, err := svc.FindImageURL(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, imageSearchResponse{Query: query, ImageURL: imageURL})
	}
}
