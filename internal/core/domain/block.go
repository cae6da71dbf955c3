package domain

// BBox is an axis-aligned rectangle in page coordinates. The origin is the
// top-left corner of the page, so larger Y means lower on the page.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

func (b BBox) Width() float64  { return b.X1 - b.X0 }
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// VerticalCenter returns the Y coordinate of the box midpoint.
func (b BBox) VerticalCenter() float64 { return (b.Y0 + b.Y1) / 2 }

// TextBlock is one extracted text region. Blocks are produced once by the
// extraction provider and never mutated afterwards.
type TextBlock struct {
	Text     string  `json:"text"`
	Page     int     `json:"page"`
	BBox     BBox    `json:"bbox"`
	FontSize float64 `json:"font_size"`
	Bold     bool    `json:"is_bold"`
}

// ImageRecord is one extracted image with its raw bytes.
type ImageRecord struct {
	Page   int    `json:"page"`
	BBox   BBox   `json:"bbox"`
	Data   []byte `json:"-"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ExtractionResult is the complete output of the extraction provider for one
// source document.
type ExtractionResult struct {
	Blocks    []TextBlock   `json:"blocks"`
	Images    []ImageRecord `json:"images"`
	PageCount int           `json:"page_count"`
}
