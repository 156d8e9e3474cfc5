package repos

import (
	"github.com/yungbote/fabsketch-backend/internal/data/repos/design"
	"github.com/yungbote/fabsketch-backend/internal/data/repos/user"
	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type DesignRepo = design.DesignRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewDesignRepo(db *gorm.DB, baseLog *logger.Logger) DesignRepo {
	return design.NewDesignRepo(db, baseLog)
}
