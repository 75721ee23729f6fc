package user

import (
	"github.com/lllypuk/gigwork/internal/application/appcore"
	"github.com/lllypuk/gigwork/internal/domain/user"
)

// Result wraps a single profile.
type Result struct {
	appcore.Result[*user.User]
}
