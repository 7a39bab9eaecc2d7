package catalog

const (
	LabTypeName             string = "Lab"
	ResearcherTypeName      string = "Researcher"
	NoteTypeName            string = "Note"
	FileTypeName            string = "File"
	ProjectTypeName         string = "Project"
	SampleTypeName          string = "Sample"
	ContainertypeTypeName   string = "Containertype"
	ContainerTypeName       string = "Container"
	ProcesstypeTypeName     string = "Processtype"
	UdfconfigTypeName       string = "Udfconfig"
	ProcessTypeName         string = "Process"
	ArtifactTypeName        string = "Artifact"
	StepPlacementsTypeName  string = "StepPlacements"
	StepActionsTypeName     string = "StepActions"
	ReagentKitTypeName      string = "ReagentKit"
	ReagentLotTypeName      string = "ReagentLot"
	StepReagentLotsTypeName string = "StepReagentLots"
	StepDetailsTypeName     string = "StepDetails"
	StepTypeName            string = "Step"
	ControlTypeTypeName     string = "ControlType"
	ProtocolStepTypeName    string = "ProtocolStep"
	ProtocolTypeName        string = "Protocol"
	StageTypeName           string = "Stage"
	WorkflowStageTypeName   string = "WorkflowStage"
	WorkflowTypeName        string = "Workflow"
	ReagentTypeTypeName     string = "ReagentType"
	QueueTypeName           string = "Queue"
	InstrumentTypeName      string = "Instrument"
)

const (
	// OutputTypeAnalyte is the output type of artifacts that hold sample material.
	OutputTypeAnalyte          string = "Analyte"
	OutputTypeResultFile       string = "ResultFile"
	OutputTypeSharedResultFile string = "SharedResultFile"
)
