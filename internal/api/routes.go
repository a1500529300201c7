package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/citation"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
)

const MIME_MULTIPART = "multipart/form-data"

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/challans").
			To(handler.IssueChallan).
			Doc("Issue a challan for a vehicle photo").
			Metadata(restfulspec.KeyOpenAPITags, []string{"challans"}).
			Consumes(MIME_MULTIPART).
			Param(ws.FormParameter("image", "JPEG or PNG vehicle photo").DataType("file").Required(true)).
			Writes(models.ChallanResult{}).
			Returns(200, "OK", models.ChallanResult{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(422, "Image Rejected", middleware.ErrorResponse{}).
			Returns(502, "Upstream Failure", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/challans/{challan_id}/pdf").
			To(handler.DownloadChallan).
			Doc("Download an issued challan").
			Metadata(restfulspec.KeyOpenAPITags, []string{"challans"}).
			Param(ws.PathParameter("challan_id", "Challan id (UUID)").DataType("string")).
			Produces(citation.ContentType, restful.MIME_JSON).
			Returns(200, "OK", nil).
			Returns(400, "Invalid Id", middleware.ErrorResponse{}).
			Returns(404, "Not Found", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/violations/normalize").
			To(handler.Normalize).
			Doc("Normalize classifier output into violation codes and a fine").
			Metadata(restfulspec.KeyOpenAPITags, []string{"violations"}).
			Reads(NormalizeRequest{}).
			Writes(models.Assessment{}).
			Returns(200, "OK", models.Assessment{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}))

	container.Add(ws)

	web := new(restful.WebService)
	web.Path("/").Produces(MIME_HTML)

	web.Route(web.GET("/").
		To(handler.UploadForm).
		Doc("Upload form").
		Metadata(restfulspec.KeyOpenAPITags, []string{"web"}))

	web.Route(web.POST("/form").
		To(handler.SubmitForm).
		Doc("Upload form submission").
		Metadata(restfulspec.KeyOpenAPITags, []string{"web"}).
		Consumes(MIME_MULTIPART))

	container.Add(web)
}

// RegisterOpenAPI serves the OpenAPI document for the registered services.
func RegisterOpenAPI(container *restful.Container) {
	config := restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       "/apidocs.json",
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}
	container.Add(restfulspec.NewOpenAPIService(config))
}

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "Challan Agent API",
			Description: "Traffic violation detection and e-challan generation",
			Version:     Version,
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{Name: "health", Description: "Health checks"}},
		{TagProps: spec.TagProps{Name: "challans", Description: "Challan issuance and download"}},
		{TagProps: spec.TagProps{Name: "violations", Description: "Violation normalization"}},
		{TagProps: spec.TagProps{Name: "web", Description: "Browser upload form"}},
	}
}
