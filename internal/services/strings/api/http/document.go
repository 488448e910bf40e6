package stringshttp

import "github.com/saulotoledo/strings-database/internal/services/strings/query"

// sortOrder is one applied sort key.
type sortOrder struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

// pageDocument is the JSON shape of a listing response. Field names follow
// the Spring Data page layout so existing clients can consume it.
type pageDocument struct {
	Content          []query.Projection `json:"content"`
	Number           int                `json:"number"`
	Size             int                `json:"size"`
	Sort             []sortOrder        `json:"sort"`
	TotalElements    int64              `json:"totalElements"`
	TotalPages       int64              `json:"totalPages"`
	NumberOfElements int                `json:"numberOfElements"`
	First            bool               `json:"first"`
	Last             bool               `json:"last"`
	Empty            bool               `json:"empty"`
}

func newPageDocument(page query.Page) pageDocument {
	content := page.Items
	if content == nil {
		content = []query.Projection{}
	}
	sort := make([]sortOrder, 0, len(page.Sort))
	for _, key := range page.Sort {
		sort = append(sort, sortOrder{
			Property:  key.Field,
			Direction: key.Direction.String(),
		})
	}
	return pageDocument{
		Content:          content,
		Number:           page.Index,
		Size:             page.Size,
		Sort:             sort,
		TotalElements:    page.Total,
		TotalPages:       page.TotalPages(),
		NumberOfElements: len(content),
		First:            page.First(),
		Last:             page.Last(),
		Empty:            len(content) == 0,
	}
}
