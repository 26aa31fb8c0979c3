package mocks

//go:generate mockery --name EventStore --srcpkg github.com/aevon-lab/logagg/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
