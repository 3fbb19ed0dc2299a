package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"alfredoptarigan/career-planner/internal/logger"
	"alfredoptarigan/career-planner/internal/models"
	"alfredoptarigan/career-planner/internal/services"
)

const (
	defaultAnswer     = "未提供"
	defaultCareerName = "未知职业"
	resumeField       = "resume"
)

// FormReader turns the assessment form into request-scoped input, saving the
// résumé under the upload directory when one was sent.
type FormReader struct {
	storage services.StorageService
	log     *logger.Logger
}

func NewFormReader(storage services.StorageService, log *logger.Logger) *FormReader {
	if log == nil {
		log = logger.Nop()
	}
	return &FormReader{
		storage: storage,
		log:     log,
	}
}

// Assessment reads mbti, city, holland_answers and, when withResume is set, the
// optional résumé file.
func (f *FormReader) Assessment(c *fiber.Ctx, withResume bool) (models.AssessmentInput, error) {
	answers, err := services.ParseHollandAnswers(c.FormValue("holland_answers", "{}"))
	if err != nil {
		f.log.Warn("ignoring malformed holland_answers", "error", err)
	}

	in := models.AssessmentInput{
		MBTI:           c.FormValue("mbti", defaultAnswer),
		City:           c.FormValue("city", defaultAnswer),
		HollandAnswers: answers,
	}

	if !withResume {
		return in, nil
	}

	resume, err := f.saveResume(c)
	if err != nil {
		return in, err
	}
	in.Resume = resume
	return in, nil
}

// Career adds career_id and career_name to the assessment fields.
func (f *FormReader) Career(c *fiber.Ctx) (models.CareerRequest, error) {
	in, err := f.Assessment(c, true)
	if err != nil {
		return models.CareerRequest{}, err
	}

	return models.CareerRequest{
		AssessmentInput: in,
		CareerID:        c.FormValue("career_id"),
		CareerName:      c.FormValue("career_name", defaultCareerName),
	}, nil
}

func (f *FormReader) saveResume(c *fiber.Ctx) (*models.UploadedFile, error) {
	file, err := c.FormFile(resumeField)
	if err != nil {
		if !errors.Is(err, fasthttp.ErrMissingFile) {
			f.log.Debug("no resume in request", "error", err)
		}
		return nil, nil
	}
	if file.Filename == "" {
		return nil, nil
	}

	saved, err := f.storage.SaveFile(file)
	if err != nil {
		f.log.Error("failed to store resume", "filename", file.Filename, "error", err)
		return nil, fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("failed to save resume: %v", err))
	}

	f.log.Info("resume stored", "original", saved.OriginalName, "stored", saved.StoredName, "size", file.Size)
	return saved, nil
}
