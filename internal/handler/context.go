package handler

type ContextKey string

var (
	SubCtxKey      ContextKey = "sub"
	MyInfoCtx      ContextKey = "myInfo"
	ProviderCtx    ContextKey = "provider"
	StaffMemberCtx ContextKey = "staffMember"
	ServiceCtx     ContextKey = "service"
	ExclusionCtx   ContextKey = "timeExclusion"
	BookingCtx     ContextKey = "booking"
)
