package notifier

// messageResponse ответ провайдера на создание сообщения
type messageResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// errorResponse тело ошибки провайдера
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
