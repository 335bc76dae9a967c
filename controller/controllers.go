// api/controller/controllers.go
package controller

import (
	"time"

	"github.com/mapcanvas/atlas/api/auth"
	"github.com/mapcanvas/atlas/api/service"
)

// Controllers holds all controller instances
type Controllers struct {
	User     *UserController
	DataSet  *DataSetController
	Resource *ResourceController
}

// InitializeControllers creates and initializes all controllers
func InitializeControllers(services *service.Services, verifier *auth.Verifier, sessions *auth.RedisSessionStore, sessionTTL time.Duration) *Controllers {
	return &Controllers{
		User:    NewUserController(services.User, sessions, sessionTTL),
		DataSet: NewDataSetController(services.DataSet),
		Resource: NewResourceController(
			NewPlaceController(services.Place, services.Submission, verifier),
			NewSubmissionController(services.Submission, verifier),
			NewAttachmentController(services.Attachment, verifier),
			NewActionController(services.Action),
			NewClientController(services.Client),
		),
	}
}
