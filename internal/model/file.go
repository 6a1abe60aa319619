package model

// File представляет медиафайл в задаче.
//
// Name вычисляется по шаблону задачи в момент добавления и дальше не меняется,
// так что имя известно до начала загрузки.
type File struct {
	URL         string `json:"url,omitempty"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	RealType    string `json:"real_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
	Status      int    `json:"status,omitempty"`
	ErrorMsg    string `json:"error_msg,omitempty"`
	Media       *Media `json:"media,omitempty"`
}
