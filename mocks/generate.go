package mocks

//go:generate mockgen -destination=./mock_market.go -package=mocks github.com/coinroutine/ledger/internal/market Source
//go:generate mockgen -destination=./mock_store.go -package=mocks github.com/coinroutine/ledger/internal/store PositionStore
