package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/game --output domain/game --outpkg gamemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/week --output domain/week --outpkg weekmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/player --output domain/player --outpkg playermock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/stats --output domain/stats --outpkg statsmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/scoring --output domain/scoring --outpkg scoringmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/draft --output domain/draft --outpkg draftmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name ScheduleSource --dir ../usecase --output usecase --outpkg usecasemock --filename schedule_source_mock.go
