package domain

// MissingRequired — имя первого отсутствующего обязательного поля, либо "".
// Поле считается заданным, если оно есть и не пустая строка;
// skip исключает поля, которые закроет загрузка файла (MediaField).
func MissingRequired(p Payload, required []string, skip string) string {
	for _, f := range required {
		if f == skip {
			continue
		}
		v, ok := p[f]
		if !ok || v == nil {
			return f
		}
		if s, isStr := v.(string); isStr && s == "" {
			return f
		}
	}
	return ""
}

// IntFrom — приведение значения payload к int (JSON даёт float64)
func IntFrom(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
