package catalog

import (
	"context"

	e "github.com/withrocks/genologics/pkg/lims/entities"
	"github.com/withrocks/genologics/pkg/lims/types"
)

const (
	details  = types.Details
	overview = types.OverviewOrDetails
)

// New declares every kind of the LIMS api. Kinds refer to each other by
// name, the catalog resolves the references once all kinds are known.
func New() (*e.Catalog, error) {
	return e.NewCatalog(Kinds()...)
}

func Kinds() []*e.Kind {
	return []*e.Kind{
		e.NewKind(LabTypeName, e.Resource("labs"), e.Prefix("lab"),
			e.Attribute("name", e.Text("name", details)),
			e.Attribute("billing_address", e.StringDict("billing-address", details)),
			e.Attribute("shipping_address", e.StringDict("shipping-address", details)),
			e.Attribute("udf", e.UDF("", details)),
			e.Attribute("udt", e.UDT("", details)),
			e.Attribute("externalids", e.ExternalIDs(details)),
			e.Attribute("website", e.Text("website", details)),
		),

		e.NewKind(ResearcherTypeName, e.Resource("researchers"), e.Prefix("res"),
			e.Attribute("first_name", e.Text("first-name", details)),
			e.Attribute("last_name", e.Text("last-name", details)),
			e.Attribute("name", e.Computed(details, researcherName)),
			e.Attribute("phone", e.Text("phone", details)),
			e.Attribute("fax", e.Text("fax", details)),
			e.Attribute("email", e.Text("email", details)),
			e.Attribute("initials", e.Text("initials", details)),
			e.Attribute("lab", e.Ref("lab", LabTypeName, details)),
			e.Attribute("udf", e.UDF("", details)),
			e.Attribute("udt", e.UDT("", details)),
			e.Attribute("externalids", e.ExternalIDs(details)),
		),

		e.NewKind(NoteTypeName,
			e.Attribute("content", e.Text("", details)),
		),

		e.NewKind(FileTypeName, e.Resource("files"), e.Prefix("file"),
			e.Attribute("attached_to", e.Text("attached-to", details)),
			e.Attribute("content_location", e.Text("content-location", details)),
			e.Attribute("original_location", e.Text("original-location", details)),
			e.Attribute("is_published", e.Bool("is-published", details)),
		),

		e.NewKind(ProjectTypeName, e.Resource("projects"), e.Prefix("prj"),
			e.Attribute("name", e.Text("name", details)),
			e.Attribute("open_date", e.DateText("open-date", details)),
			e.Attribute("close_date", e.DateText("close-date", details)),
			e.Attribute("invoice_date", e.DateText("invoice-date", details)),
			e.Attribute("researcher", e.Ref("researcher", ResearcherTypeName, details)),
			e.Attribute("udf", e.UDF("", details)),
			e.Attribute("udt", e.UDT("", details)),
			e.Attribute("files", e.RefList("file:file", FileTypeName, "", details)),
			e.Attribute("externalids", e.ExternalIDs(details)),
		),

		e.NewKind(SampleTypeName, e.Resource("samples"), e.Prefix("smp"),
			e.Attribute("name", e.Text("name", details)),
			e.Attribute("date_received", e.DateText("date-received", details)),
			e.Attribute("date_completed", e.DateText("date-completed", details)),
			e.Attribute("project", e.Ref("project", ProjectTypeName, details)),
			e.Attribute("submitter", e.Ref("submitter", ResearcherTypeName, details)),
			e.Attribute("artifact", e.Ref("artifact", ArtifactTypeName, details)),
			e.Attribute("udf", e.UDF("", details)),
			e.Attribute("udt", e.UDT("", details)),
			e.Attribute("notes", e.RefList("note", NoteTypeName, "", details)),
			e.Attribute("files", e.RefList("file:file", FileTypeName, "", details)),
			e.Attribute("externalids", e.ExternalIDs(details)),
		),

		e.NewKind(ContainertypeTypeName, e.Resource("containertypes"), e.Prefix("ctp"), e.Tag("container-type"),
			e.Attribute("name", e.Attr("name", overview)),
			e.Attribute("calibrant_wells", e.StringList("calibrant-well", "", details)),
			e.Attribute("unavailable_wells", e.StringList("unavailable-well", "", details)),
			e.Attribute("x_dimension", e.DimensionOf("x-dimension", details)),
			e.Attribute("y_dimension", e.DimensionOf("y-dimension", details)),
		),

		e.NewKind(ContainerTypeName, e.Resource("containers"), e.Prefix("con"),
			e.Attribute("name", e.Text("name", details)),
			e.Attribute("type", e.Ref("type", ContainertypeTypeName, details)),
			e.Attribute("occupied_wells", e.Int("occupied-wells", details)),
			e.Attribute("placements", e.Placements("placement", ArtifactTypeName, details)),
			e.Attribute("udf", e.UDF("", details)),
			e.Attribute("udt", e.UDT("", details)),
			e.Attribute("state", e.Text("state", details)),
		),

		e.NewKind(ProcesstypeTypeName, e.Resource("processtypes"), e.Prefix("ptp"), e.Tag("process-type"),
			e.Attribute("name", e.Attr("name", overview)),
			e.Attribute("field_definitions", e.AttrList("field-definition", "", details)),
			e.Attribute("parameters", e.AttrList("parameter", "", details)),
		),

		e.NewKind(UdfconfigTypeName, e.Resource("configuration/udfs"), e.Prefix("cnf"), e.Tag("udfconfig"),
			e.Attribute("name", e.Text("name", details)),
			e.Attribute("attach_to_name", e.Text("attach-to-name", details)),
			e.Attribute("attach_to_category", e.Text("attach-to-category", details)),
			e.Attribute("show_in_lablink", e.Bool("show-in-lablink", details)),
			e.Attribute("allow_non_preset_values", e.Bool("allow-non-preset-values", details)),
			e.Attribute("first_preset_is_default_value", e.Bool("first-preset-is-default-value", details)),
			e.Attribute("show_in_tables", e.Bool("show-in-tables", details)),
			e.Attribute("is_editable", e.Bool("is-editable", details)),
			e.Attribute("is_deviation", e.Bool("is-deviation", details)),
			e.Attribute("is_controlled_vocabulary", e.Bool("is-controlled-vocabulary", details)),
			e.Attribute("presets", e.StringList("preset", "", details)),
		),

		e.NewKind(ProcessTypeName, e.Resource("processes"), e.Prefix("prc"),
			e.Attribute("type", e.Ref("type", ProcesstypeTypeName, details)),
			e.Attribute("date_run", e.DateText("date-run", details)),
			e.Attribute("technician", e.Ref("technician", ResearcherTypeName, details)),
			e.Attribute("protocol_name", e.Text("protocol-name", details)),
			e.Attribute("input_output_maps", e.InputOutputMaps("", details)),
			e.Attribute("udf", e.UDF("", details)),
			e.Attribute("udt", e.UDT("", details)),
			e.Attribute("files", e.RefList("file:file", FileTypeName, "", details)),
			e.Attribute("process_parameter", e.Text("process-parameter", details)),
		),

		e.NewKind(ArtifactTypeName, e.Resource("artifacts"), e.Prefix("art"),
			e.Attribute("name", e.Text("name", details)),
			e.Attribute("type", e.Text("type", details)),
			e.Attribute("output_type", e.Text("output-type", details)),
			e.Attribute("parent_process", e.Ref("parent-process", ProcessTypeName, details)),
			e.Attribute("volume", e.Text("volume", details)),
			e.Attribute("concentration", e.Text("concentration", details)),
			e.Attribute("qc_flag", e.Text("qc-flag", details)),
			e.Attribute("location", e.LocationOf("location", ContainerTypeName, details)),
			e.Attribute("working_flag", e.Bool("working-flag", details)),
			e.Attribute("samples", e.RefList("sample", SampleTypeName, "", details)),
			e.Attribute("udf", e.UDF("", details)),
			e.Attribute("files", e.RefList("file:file", FileTypeName, "", details)),
			e.Attribute("reagent_labels", e.ReagentLabels(details)),
			e.Attribute("workflow_stages", e.NestedRefList("workflow-stage", WorkflowStageTypeName, "workflow-stages", details, e.WithBag("status", "name"))),
		),

		e.NewKind(StepPlacementsTypeName, e.Prefix("stp"), e.Tag("placements"),
			e.Attribute("step", e.Ref("step", StepTypeName, details)),
			e.Attribute("selected_containers", e.RefList("container", ContainerTypeName, "selected-containers", details)),
		),

		e.NewKind(StepActionsTypeName, e.Prefix("stp"), e.Tag("actions"),
			e.Attribute("step", e.Ref("step", StepTypeName, details)),
			e.Attribute("next_actions", e.AttrList("next-action", "next-actions", details)),
		),

		e.NewKind(ReagentKitTypeName, e.Resource("reagentkits"), e.Prefix("kit"), e.Tag("reagent-kit"),
			e.Attribute("name", e.Text("name", details)),
			e.Attribute("supplier", e.Text("supplier", details)),
			e.Attribute("website", e.Text("website", details)),
			e.Attribute("archived", e.Bool("archived", details)),
		),

		e.NewKind(ReagentLotTypeName, e.Resource("reagentlots"), e.Prefix("lot"), e.Tag("reagent-lot"),
			e.Attribute("reagent_kit", e.Ref("reagent-kit", ReagentKitTypeName, details)),
			e.Attribute("name", e.Text("name", details)),
			e.Attribute("lot_number", e.Text("lot-number", details)),
			e.Attribute("created_date", e.DateText("created-date", details)),
			e.Attribute("last_modified_date", e.DateText("last-modified-date", details)),
			e.Attribute("expiry_date", e.DateText("expiry-date", details)),
			e.Attribute("created_by", e.Ref("created-by", ResearcherTypeName, details)),
			e.Attribute("last_modified_by", e.Ref("last-modified-by", ResearcherTypeName, details)),
			e.Attribute("status", e.Text("status", details)),
			e.Attribute("usage_count", e.Int("usage-count", details)),
		),

		e.NewKind(StepReagentLotsTypeName, e.Prefix("stp"), e.Tag("lots"),
			e.Attribute("step", e.Ref("step", StepTypeName, details)),
			e.Attribute("reagent_lots", e.NestedRefList("reagent-lot", ReagentLotTypeName, "reagent-lots", details)),
		),

		e.NewKind(StepDetailsTypeName, e.Prefix("stp"), e.Tag("details"),
			e.Attribute("step", e.Ref("step", StepTypeName, details)),
			e.Attribute("input_output_maps", e.InputOutputMaps("input-output-maps", details)),
			e.Attribute("udf", e.UDF("fields", details)),
			e.Attribute("udt", e.UDT("fields", details)),
		),

		e.NewKind(StepTypeName, e.Resource("steps"), e.Prefix("stp"),
			e.Attribute("current_state", e.Attr("current-state", details)),
			e.Attribute("reagent_lots", e.Ref("reagent-lots", StepReagentLotsTypeName, details)),
			e.Attribute("actions", e.Ref("actions", StepActionsTypeName, details)),
			e.Attribute("placements", e.Ref("placements", StepPlacementsTypeName, details)),
			e.Attribute("details", e.Ref("details", StepDetailsTypeName, details)),
			e.Attribute("configuration", e.Ref("configuration", ProtocolStepTypeName, details)),
		),

		e.NewKind(ControlTypeTypeName, e.Tag("control-type"),
			e.Attribute("name", e.Attr("name", overview)),
		),

		e.NewKind(ProtocolStepTypeName, e.Prefix("protstepcnf"), e.Tag("step"),
			e.Attribute("name", e.Attr("name", details)),
			e.Attribute("protocol_step_index", e.Int("protocol-step-index", details)),
			e.Attribute("process_type", e.Ref("process-type", ProcesstypeTypeName, details)),
			e.Attribute("permitted_containers", e.StringList("container-type", "permitted-containers", details)),
			e.Attribute("permitted_control_types", e.NestedRefList("control-type", ControlTypeTypeName, "permitted-control-types", details)),
			e.Attribute("transitions", e.AttrList("transition", "transitions", details)),
			e.Attribute("default_grouping", e.Text("default-grouping", details)),
			e.Attribute("queue_fields", e.AttrList("queue-field", "queue-fields", details)),
			e.Attribute("step_fields", e.AttrList("step-field", "step-fields", details)),
			e.Attribute("sample_fields", e.AttrList("sample-field", "sample-fields", details)),
			e.Attribute("step_properties", e.AttrList("step-property", "step-properties", details)),
			e.Attribute("epp_triggers", e.AttrList("epp-trigger", "epp-triggers", details)),
		),

		e.NewKind(ProtocolTypeName, e.Resource("configuration/protocols"), e.Prefix("protcnf"),
			e.Attribute("name", e.Attr("name", overview)),
			e.Attribute("steps", e.NestedRefList("step", ProtocolStepTypeName, "steps", details, e.Expanded())),
			e.Attribute("properties", e.AttrList("protocol-property", "protocol-properties", details)),
		),

		e.NewKind(StageTypeName, e.Prefix("stg"),
			e.Attribute("name", e.Attr("name", details)),
			e.Attribute("index", e.IntAttr("index", details)),
			e.Attribute("protocol", e.Ref("protocol", ProtocolTypeName, details)),
			e.Attribute("step", e.Ref("step", ProtocolStepTypeName, details)),
			e.Attribute("workflow", e.Ref("workflow", WorkflowTypeName, details)),
		),

		// a stage as listed by an artifact, where the listing also tells its status
		e.NewKind(WorkflowStageTypeName, e.Extends(StageTypeName), e.Tag("workflow-stage"),
			e.Attribute("status", e.FromBag()),
		),

		e.NewKind(WorkflowTypeName, e.Resource("configuration/workflows"), e.Prefix("wkfcnf"),
			e.Attribute("name", e.Attr("name", overview)),
			e.Attribute("status", e.Attr("status", overview)),
			e.Attribute("protocols", e.NestedRefList("protocol", ProtocolTypeName, "protocols", details, e.WithBag("name"))),
			e.Attribute("stages", e.NestedRefList("stage", StageTypeName, "stages", details, e.WithBag("name"))),
		),

		e.NewKind(ReagentTypeTypeName, e.Resource("reagenttypes"), e.Prefix("rtp"), e.Tag("reagent-type"),
			e.Attribute("name", e.Attr("name", overview)),
			e.Attribute("category", e.Text("reagent-category", details)),
			e.Attribute("sequence", e.Computed(details, indexSequence)),
		),

		e.NewKind(QueueTypeName, e.Resource("queues"), e.Prefix("que"),
			e.Attribute("artifacts", e.NestedRefList("artifact", ArtifactTypeName, "artifacts", details)),
		),

		e.NewKind(InstrumentTypeName, e.Resource("instruments"), e.Prefix("inst"),
			e.Attribute("name", e.Text("name", details)),
			e.Attribute("type", e.Text("type", details)),
			e.Attribute("serial_number", e.Text("serial-number", details)),
			e.Attribute("expiry_date", e.DateText("expiry-date", details)),
			e.Attribute("archived", e.Bool("archived", details)),
		),
	}
}

func researcherName(ctx context.Context, r *e.Entity) (any, error) {
	first, err := e.String(ctx, r, "first_name")
	if err != nil {
		return nil, err
	}

	last, err := e.String(ctx, r, "last_name")
	if err != nil {
		return nil, err
	}

	return first + " " + last, nil
}
