package mocks

//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource DataSource
//go:generate mockgen -destination=./mock_commission_fee.go -package=mocks github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee CommissionFee
