package aisummarizer

import "github.com/m04kA/SMC-DoctorBooking/internal/domain"

// Input данные пациента, отправляемые на анализ
type Input struct {
	Patient      domain.Patient
	Reports      []domain.ReportGroup
	HealthIssues string
}

// patientInfo демографическое подмножество, которое попадает в промпт
type patientInfo struct {
	Name            string `json:"name"`
	Age             *int   `json:"age"`
	Gender          string `json:"gender"`
	BloodPressure   string `json:"bloodPressure"`
	Diabetic        string `json:"diabetic"`
	Hyperthyroidism string `json:"hyperthyroidism"`
}

type reportGroup struct {
	GroupName  string   `json:"groupName"`
	ReportURLs []string `json:"reportUrls"`
}

// generateRequest тело запроса generateContent
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateResponse ответ generateContent (нас интересует только первый кандидат)
type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}
