package entity

// FilterAll - значение фильтра "без ограничения"
const FilterAll = "all"

// Filter - состояние фильтров UI, не сохраняется
type Filter struct {
	Status   Status   `json:"status"`
	Priority Priority `json:"priority"`
	Assignee string   `json:"assignee"`
}

func DefaultFilter() Filter {
	return Filter{Status: FilterAll, Priority: FilterAll, Assignee: FilterAll}
}

func isAll(v string) bool {
	return v == "" || v == FilterAll
}

// Matches проверяет структурные условия (без текстового поиска)
func (f Filter) Matches(t Task) bool {
	if !isAll(string(f.Status)) && t.Status != f.Status {
		return false
	}
	if !isAll(string(f.Priority)) && t.Priority != f.Priority {
		return false
	}
	if !isAll(f.Assignee) && (t.Assignee == nil || t.Assignee.ID != f.Assignee) {
		return false
	}
	return true
}

func (f Filter) IsDefault() bool {
	return isAll(string(f.Status)) && isAll(string(f.Priority)) && isAll(f.Assignee)
}
