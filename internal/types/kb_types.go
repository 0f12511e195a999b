package types

// Document 知识库文档
type Document struct {
	ID             ID     `json:"id,omitempty"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	Category       ID     `json:"category,omitempty"`
	Tags           []ID   `json:"tags,omitempty"`
	Creator        ID     `json:"creator,omitempty"`
	Status         int    `json:"status"`
	ViewCount      int    `json:"view_count,omitempty"`
	VectorID       string `json:"vector_id,omitempty"`
	CreateDatetime string `json:"create_datetime,omitempty"`
}

// GetID 实现 Identifiable
func (d Document) GetID() ID { return d.ID }

// Category 文档分类
type Category struct {
	ID     ID     `json:"id,omitempty"`
	Name   string `json:"name"`
	Parent ID     `json:"parent,omitempty"`
	Order  int    `json:"order"`
}

// GetID 实现 Identifiable
func (c Category) GetID() ID { return c.ID }

// Tag 文档标签
type Tag struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name"`
}

// GetID 实现 Identifiable
func (t Tag) GetID() ID { return t.ID }

// ActionStatus 文档动作接口返回的 {"status": "success"}
type ActionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
