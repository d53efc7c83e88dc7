package mocks

//go:generate mockery --name ResultStore --srcpkg github.com/tse-eval/resampler/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
