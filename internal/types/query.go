package types

// PageQuery 列表查询信封：分页参数加任意过滤条件，原样透传给服务端
type PageQuery struct {
	Page    int
	Limit   int
	Filters map[string]any
}

// NewPageQuery 创建分页查询
func NewPageQuery(page, limit int) PageQuery {
	return PageQuery{Page: page, Limit: limit, Filters: map[string]any{}}
}

// With 追加一个过滤条件并返回自身，便于链式构造
func (q PageQuery) With(key string, value any) PageQuery {
	filters := make(map[string]any, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	filters[key] = value
	q.Filters = filters
	return q
}

// Params 转为请求参数。未设置的 page/limit 不出现在参数中，过滤条件不做任何变换。
func (q PageQuery) Params() map[string]any {
	params := make(map[string]any, len(q.Filters)+2)
	for k, v := range q.Filters {
		params[k] = v
	}
	if q.Page > 0 {
		params["page"] = q.Page
	}
	if q.Limit > 0 {
		params["limit"] = q.Limit
	}
	return params
}
