package dto

// Response - единый конверт ответа REST API
type Response struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Meta       interface{} `json:"meta"`
	Data       interface{} `json:"data"`
}

func Success(status int, message string, data interface{}) Response {
	return Response{Success: true, StatusCode: status, Message: message, Data: data}
}

func Fail(status int, message string) Response {
	return Response{Success: false, StatusCode: status, Message: message}
}

// Page описывает курсорную пагинацию
type Page struct {
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

func SuccessWithMeta(status int, message string, data, meta interface{}) Response {
	return Response{Success: true, StatusCode: status, Message: message, Meta: meta, Data: data}
}
