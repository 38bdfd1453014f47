package catalog

import (
	"encoding/json"
	"time"

	"catalog_importer/internal/domain"
)

// ListResponse is the envelope returned by collection queries.
type ListResponse struct {
	Data []json.RawMessage `json:"data"`
	Meta *Meta             `json:"meta,omitempty"`
}

type Meta struct {
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// CreateRequest is the body of a product create call.
type CreateRequest struct {
	Data ProductPayload `json:"data"`
}

type ProductPayload struct {
	Name                   string             `json:"name"`
	Slug                   string             `json:"slug"`
	ArticleNumber          string             `json:"articleNumber"`
	Description            string             `json:"description"`
	Specifications         []domain.SpecEntry `json:"specifications"`
	DetailedSpecifications []domain.SpecEntry `json:"detailedSpecifications"`
	WhereToBuyLink         string             `json:"whereToBuyLink"`
	PublishedAt            *time.Time         `json:"publishedAt"` // always null: created as draft
	Category               *Relation          `json:"category,omitempty"`
	Subcategory            *Relation          `json:"subcategory,omitempty"`
	Brand                  *Relation          `json:"brand,omitempty"`
	Model                  *Relation          `json:"model,omitempty"`
	Modification           *Relation          `json:"modification,omitempty"`
}

// Relation links the product to an existing entity.
type Relation struct {
	ID int `json:"id"`
}

func relation(id int) *Relation {
	if id == 0 {
		return nil
	}
	return &Relation{ID: id}
}

// NewCreateRequest shapes a record into the create payload.
func NewCreateRequest(r domain.ProductRecord) CreateRequest {
	return CreateRequest{
		Data: ProductPayload{
			Name:                   r.Name,
			Slug:                   r.Slug,
			ArticleNumber:          r.Article,
			Description:            r.Description,
			Specifications:         r.Specifications,
			DetailedSpecifications: r.DetailedSpecifications,
			WhereToBuyLink:         r.WhereToBuyLink,
			Category:               relation(r.Category),
			Subcategory:            relation(r.Subcategory),
			Brand:                  relation(r.Brand),
			Model:                  relation(r.Model),
			Modification:           relation(r.Modification),
		},
	}
}
