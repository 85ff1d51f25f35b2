package comics

type ListComicsQuery struct {
	Start  string `query:"start" json:"start,omitempty" validate:"date"`
	End    string `query:"end" json:"end,omitempty" validate:"date"`
	Limit  *int   `query:"limit" json:"limit,omitempty" validate:"omitempty,min=1,max=500"`
	Offset *int   `query:"offset" json:"offset,omitempty" validate:"omitempty,min=0"`
}

type SearchComicsQuery struct {
	Q      string `query:"q" json:"q" mod:"trim" validate:"required,max=100"`
	Limit  *int   `query:"limit" json:"limit,omitempty" validate:"omitempty,min=1,max=500"`
	Offset *int   `query:"offset" json:"offset,omitempty" validate:"omitempty,min=0"`
}

type WeekQuery struct {
	Wed string `query:"wed" json:"wed" validate:"required,date"`
}
