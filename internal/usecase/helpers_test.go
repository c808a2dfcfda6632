package usecase

func intPtr(v int) *int { return &v }
