package mocks

//go:generate mockgen -destination=./mock_predictor.go -package=mocks github.com/rxtech-lab/argo-signal/internal/forecast Predictor
//go:generate mockgen -destination=./mock_indicator.go -package=mocks github.com/rxtech-lab/argo-signal/internal/indicator Indicator
