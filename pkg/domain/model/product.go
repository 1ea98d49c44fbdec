package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// ID is a backend identifier. The data source emits both numeric and
// string ids; 1 and "1" decode to the same ID.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes canonical decimal integers as JSON numbers and
// anything else, "007" included, as a JSON string.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

type Category struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID            ID       `json:"id"`
	Name          string   `json:"name"`
	Brand         string   `json:"brand"`
	CategoryID    ID       `json:"categoryId"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"originalPrice"`
	Discount      float64  `json:"discount"`
	Stock         int      `json:"stock"`
	Rating        float64  `json:"rating"`
	Reviews       int      `json:"reviews"`
	Images        []string `json:"images"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	Colors        []string `json:"colors"`
	Sizes         []string `json:"sizes"`
	Description   string   `json:"description"`
	IsNew         bool     `json:"isNew"`
	IsFeatured    bool     `json:"isFeatured"`
	CreatedAt     string   `json:"createdAt,omitempty"`
	UpdatedAt     string   `json:"updatedAt,omitempty"`
}

// PrimaryImage returns the first image, falling back to the thumbnail.
func (p Product) PrimaryImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return p.Thumbnail
}
