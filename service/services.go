// api/service/services.go
package service

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/mapcanvas/atlas/api/audit"
	"github.com/mapcanvas/atlas/api/dao"
	"github.com/mapcanvas/atlas/api/util"
)

type Services struct {
	DataSet    IDataSetService
	Place      IPlaceService
	Submission ISubmissionService
	Attachment IAttachmentService
	Action     IActionService
	User       IUserService
	Client     IClientService
}

func InitializeServices(
	driver neo4j.Driver,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	cacheService *util.CacheService,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) (*Services, error) {
	userDAO := dao.NewUserDAO(driver, auditService)
	datasetDAO := dao.NewDataSetDAO(driver, eventBus, auditService)
	clientDAO := dao.NewClientDAO(driver, eventBus, auditService)
	placeDAO := dao.NewPlaceDAO(driver, eventBus, auditService)
	submissionDAO := dao.NewSubmissionDAO(driver, eventBus, auditService)
	attachmentDAO := dao.NewAttachmentDAO(driver, eventBus, auditService)
	actionDAO := dao.NewActionDAO(driver, eventBus, auditService)

	services := &Services{
		DataSet:    NewDataSetService(datasetDAO, clientDAO, validationUtil, cacheService, eventBus),
		Place:      NewPlaceService(placeDAO, actionDAO, validationUtil, notificationSvc, eventBus),
		Submission: NewSubmissionService(submissionDAO, placeDAO, actionDAO, validationUtil, notificationSvc, eventBus),
		Attachment: NewAttachmentService(attachmentDAO, validationUtil),
		Action:     NewActionService(actionDAO),
		User:       NewUserService(userDAO, validationUtil, cacheService),
		Client:     NewClientService(clientDAO),
	}

	return services, nil
}
