package domain

import (
	"github.com/yungbote/fabsketch-backend/internal/domain/design"
	"github.com/yungbote/fabsketch-backend/internal/domain/user"
)

type User = user.User
type GeneratedDesign = design.GeneratedDesign
