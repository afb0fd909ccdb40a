package basic

const (
	defaultPage int64 = 1
	defaultSize int64 = 10
	maxSize     int64 = 100
)

// Response 通用响应码
type Response struct {
	Code int32  `json:"code"`
	Msg  string `json:"msg"`
}

// Page 分页参数
type Page struct {
	Page *int64 `json:"page,omitempty" query:"page"`
	Size *int64 `json:"size,omitempty" query:"size"`
}

func (p *Page) GetPage() int64 {
	if p == nil || p.Page == nil || *p.Page < 1 {
		return defaultPage
	}
	return *p.Page
}

func (p *Page) GetSize() int64 {
	if p == nil || p.Size == nil || *p.Size < 1 {
		return defaultSize
	}
	if *p.Size > maxSize {
		return maxSize
	}
	return *p.Size
}
