package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 대시보드는 이 코드를 기준으로 메시지를 매핑한다

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED"  // 로그인 필요
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED" // 토큰 만료
	AuthTokenInvalid = "AUTH_TOKEN_INVALID" // 잘못된 토큰

	// ==================== 인가/권한 (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN" // 접근 권한 없음

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // 잘못된 입력
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // 잘못된 ID
	ValidationRequired     = "VALIDATION_REQUIRED"      // 필수 항목

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"       // 충돌

	// ==================== 매장 (STORE_) ====================
	StoreNotFound           = "STORE_NOT_FOUND"            // 매장 없음
	StoreDuplicateName      = "STORE_DUPLICATE_NAME"       // 같은 이름의 매장 존재
	StoreRegistrationFailed = "STORE_REGISTRATION_FAILED"  // 등록 실패
	StoreRequestInProgress  = "STORE_REQUEST_IN_PROGRESS"  // 같은 키의 요청 처리 중
	StoreIdempotencyMissing = "STORE_IDEMPOTENCY_REQUIRED" // Idempotency-Key 헤더 없음

	// ==================== 위저드 (WIZARD_) ====================
	WizardNotFound             = "WIZARD_NOT_FOUND"              // 세션 없음 (닫힘/만료 포함)
	WizardSubmissionInProgress = "WIZARD_SUBMISSION_IN_PROGRESS" // 등록 요청 진행 중
	WizardComplete             = "WIZARD_COMPLETE"               // 등록 완료 후 수정 불가
	WizardReadOnlySection      = "WIZARD_READ_ONLY_SECTION"      // 수정 불가 섹션
	WizardUnknownSection       = "WIZARD_UNKNOWN_SECTION"        // 없는 섹션
	WizardInvalidPatch         = "WIZARD_INVALID_PATCH"          // 잘못된 패치
	WizardStaleStep            = "WIZARD_STALE_STEP"             // 현재 단계가 아님
	WizardStoreNameRequired    = "WIZARD_STORE_NAME_REQUIRED"    // 웹훅 생성에 매장명 필요

	// ==================== 업로드 (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // 잘못된 파일 형식
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"    // 파일 너무 큼
	UploadFailed          = "UPLOAD_FAILED"            // 업로드 실패

	// ==================== 인증서 (CREDENTIAL_) ====================
	CredentialMalformed   = "CREDENTIAL_MALFORMED"    // JSON 파싱 실패
	CredentialMissingKeys = "CREDENTIAL_MISSING_KEYS" // client_email/private_key 없음

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 서버 오류
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB 오류
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // 외부 API 오류
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"   // 설정 오류
)
