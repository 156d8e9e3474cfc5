package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/fabsketch-backend/internal/data/repos"
	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
)

type Repos struct {
	User   repos.UserRepo
	Design repos.DesignRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:   repos.NewUserRepo(db, log),
		Design: repos.NewDesignRepo(db, log),
	}
}
