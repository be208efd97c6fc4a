package domain

var (
	QUIZ_SESSION_START_SUCCESS      = "Session started"
	QUIZ_SESSION_START_FAILED       = "Failed to start session"
	QUIZ_SESSION_LOAD_FAILED        = "Failed to load questions"
	QUIZ_SESSION_GET_SUCCESS        = "Session retrieved"
	QUIZ_SESSION_GET_FAILED         = "Failed to get session"
	QUIZ_SESSION_SELECT_SUCCESS     = "Option selected"
	QUIZ_SESSION_SELECT_FAILED      = "Failed to select option"
	QUIZ_SESSION_CONFIRM_SUCCESS    = "Answer confirmed"
	QUIZ_SESSION_CONFIRM_FAILED     = "Failed to confirm answer"
	QUIZ_SESSION_NEXT_SUCCESS       = "Moved to next question"
	QUIZ_SESSION_NEXT_FAILED        = "Failed to move to next question"
	QUIZ_SESSION_RETRY_SUCCESS      = "Retry completed"
	QUIZ_SESSION_RETRY_FAILED       = "Failed to retry"
	QUIZ_SESSION_TIME_UP            = "Time is up, session finished"
	QUIZ_SESSION_CLOSE_SUCCESS      = "Session closed"
	QUIZ_SESSION_CLOSE_FAILED       = "Failed to close session"
	QUIZ_SESSION_REPORT_SUCCESS     = "Report generated"
	QUIZ_SESSION_REPORT_FAILED      = "Failed to generate report"
	QUIZ_RESULTS_GET_SUCCESS        = "Results retrieved"
	QUIZ_RESULTS_GET_FAILED         = "Failed to get results"
	QUIZ_RESULT_ANSWERS_GET_SUCCESS = "Answer log retrieved"
	QUIZ_RESULT_ANSWERS_GET_FAILED  = "Failed to get answer log"
	QUIZ_CATEGORIES_GET_SUCCESS     = "Categories retrieved"
	QUIZ_CATEGORIES_GET_FAILED      = "Failed to get categories"
	AUTH_INVALID_TOKEN              = "Invalid token"
)
