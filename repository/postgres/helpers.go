package postgres

func textOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
