package models

// Requests for the monitoring HTTP endpoints. Defined in domain for
// consistency and reuse. Product is optional everywhere; the facade falls
// back to the configured target product.

type ProductRequest struct {
	Product string `query:"product" json:"product"`
}

type SeriesRequest struct {
	Product string `query:"product" json:"product"`
	Last    int    `query:"last" json:"last" default:"0" validate:"gte=0,lte=200"`
}

type ReactionsRequest struct {
	Product string `query:"product" json:"product"`
	Limit   int    `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=100"`
}

type UpdateRequest struct {
	Product string `query:"product" json:"product"`
}
