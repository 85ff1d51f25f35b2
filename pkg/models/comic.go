package models

import (
	"time"

	"github.com/uptrace/bun"
)

const ComicFormatComic = "Comic"

type Comic struct {
	bun.BaseModel `bun:"table:comics,alias:c" tstype:"-"`

	ID           int       `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ExternalID   *int      `json:"external_id"`
	Title        string    `bun:",notnull" json:"title"`
	Author       *string   `json:"author"`
	OnsaleDate   *Date     `bun:"onsale_date,type:text" json:"onsale_date"`
	Format       *string   `json:"format"`
	ThumbnailURL *string   `bun:"thumbnail_url" json:"thumbnail_url"`
	Description  *string   `json:"description"`
	IssueNumber  *float64  `json:"issue_number"`
}
