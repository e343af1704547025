package normalize

// Field names a canonical call attribute independent of provider naming.
type Field string

const (
	FieldID           Field = "id"
	FieldCampaignID   Field = "campaignId"
	FieldCampaignName Field = "campaignName"
	FieldAgent        Field = "agentName"
	FieldCaller       Field = "callerNumber"
	FieldDuration     Field = "durationSeconds"
	FieldRecordingURL Field = "recordingUrl"
	FieldStartTime    Field = "startTime"
	FieldEndTime      Field = "endTime"
	FieldStatus       Field = "status"
	FieldConnected    Field = "connected"
	FieldDisposition  Field = "disposition"
	FieldConverted    Field = "converted"
	FieldRevenue      Field = "revenue"
	FieldCost         Field = "cost"
)

type kind int

const (
	kindString kind = iota
	kindInt
	kindDecimal
	kindBool
	kindTime
)

var fieldKinds = map[Field]kind{
	FieldID:           kindString,
	FieldCampaignID:   kindString,
	FieldCampaignName: kindString,
	FieldAgent:        kindString,
	FieldCaller:       kindString,
	FieldDuration:     kindInt,
	FieldRecordingURL: kindString,
	FieldStartTime:    kindTime,
	FieldEndTime:      kindTime,
	FieldStatus:       kindString,
	FieldConnected:    kindBool,
	FieldDisposition:  kindString,
	FieldConverted:    kindBool,
	FieldRevenue:      kindDecimal,
	FieldCost:         kindDecimal,
}

// Fields lists every canonical field in a stable order.
var Fields = []Field{
	FieldID,
	FieldCampaignID,
	FieldCampaignName,
	FieldAgent,
	FieldCaller,
	FieldDuration,
	FieldRecordingURL,
	FieldStartTime,
	FieldEndTime,
	FieldStatus,
	FieldConnected,
	FieldDisposition,
	FieldConverted,
	FieldRevenue,
	FieldCost,
}

// defaultAliases is ordered: the first alias present in a record wins, even
// when a later one also carries a value. Several provider endpoints are live
// at once, so reordering an entry changes which value is read.
var defaultAliases = map[Field][]string{
	FieldID:           {"call_id", "callId", "id", "inboundCallId"},
	FieldCampaignID:   {"campaign_id", "campaignId", "campaign", "campaignName", "campaign_name"},
	FieldCampaignName: {"campaign_name", "campaignName", "campaign"},
	FieldAgent:        {"agent_name", "agentName", "agent", "targetName", "target_name", "buyer", "publisherName"},
	FieldCaller:       {"caller_number", "callerId", "inboundPhoneNumber", "from", "ani"},
	FieldDuration:     {"duration", "call_duration", "callLengthInSeconds", "talk_time", "connectedCallLengthInSeconds", "durationSeconds"},
	FieldRecordingURL: {"recording_url", "recordingUrl", "recording", "recordingURL", "recording_link", "audio_url"},
	FieldStartTime:    {"start_time", "startTime", "callDt", "call_date", "callDate", "timestamp", "created_at", "createdAt"},
	FieldEndTime:      {"end_time", "endTime", "callCompletedDt", "completed_at"},
	FieldStatus:       {"status", "call_status", "callStatus", "state"},
	FieldConnected:    {"hasConnected", "has_connected", "connected", "isConnected"},
	FieldDisposition:  {"disposition", "call_disposition", "callDisposition", "outcome", "result"},
	FieldConverted:    {"hasConverted", "has_converted", "converted", "isConverted"},
	FieldRevenue:      {"revenue", "conversionAmount", "conversion_amount", "revenue_amount"},
	FieldCost:         {"cost", "payoutAmount", "payout_amount", "call_cost"},
}

// DefaultAliases returns a copy of the built-in alias table.
func DefaultAliases() map[Field][]string {
	out := make(map[Field][]string, len(defaultAliases))
	for f, aliases := range defaultAliases {
		out[f] = append([]string(nil), aliases...)
	}
	return out
}
