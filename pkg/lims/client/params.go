package client

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// RequestDecoratorFunc appends encoded key=value pairs to the query of a request.
type RequestDecoratorFunc func([]string) []string

// Param adds one query parameter per value. Underscores in the key are
// replaced with dashes, the way the LIMS names its query parameters.
func Param(key string, values ...string) RequestDecoratorFunc {
	return rawParam(strings.ReplaceAll(key, "_", "-"), values...)
}

// rawParam adds the key as given. User field and type names are sent
// exactly as they are named in the LIMS.
func rawParam(key string, values ...string) RequestDecoratorFunc {
	return func(params []string) []string {
		for _, v := range values {
			params = append(params, fmt.Sprintf("%s=%s", url.QueryEscape(key), url.QueryEscape(v)))
		}
		return params
	}
}

func Name(names ...string) RequestDecoratorFunc {
	return Param("name", names...)
}

func Type(typeNames ...string) RequestDecoratorFunc {
	return Param("type", typeNames...)
}

func State(states ...string) RequestDecoratorFunc {
	return Param("state", states...)
}

func ProjectName(names ...string) RequestDecoratorFunc {
	return Param("projectname", names...)
}

func ProjectLimsID(ids ...string) RequestDecoratorFunc {
	return Param("projectlimsid", ids...)
}

func SampleName(names ...string) RequestDecoratorFunc {
	return Param("sample_name", names...)
}

func SampleLimsID(ids ...string) RequestDecoratorFunc {
	return Param("samplelimsid", ids...)
}

func ContainerName(names ...string) RequestDecoratorFunc {
	return Param("containername", names...)
}

func ContainerLimsID(ids ...string) RequestDecoratorFunc {
	return Param("containerlimsid", ids...)
}

func InputArtifactLimsID(ids ...string) RequestDecoratorFunc {
	return Param("inputartifactlimsid", ids...)
}

func ProcessType(typeNames ...string) RequestDecoratorFunc {
	return Param("process_type", typeNames...)
}

func QCFlag(flags ...string) RequestDecoratorFunc {
	return Param("qc_flag", flags...)
}

func WorkingFlag(working bool) RequestDecoratorFunc {
	return Param("working_flag", fmt.Sprintf("%t", working))
}

func ReagentLabel(labels ...string) RequestDecoratorFunc {
	return Param("reagent_label", labels...)
}

func ArtifactGroup(groups ...string) RequestDecoratorFunc {
	return Param("artifactgroup", groups...)
}

func FirstName(names ...string) RequestDecoratorFunc {
	return Param("firstname", names...)
}

func LastName(names ...string) RequestDecoratorFunc {
	return Param("lastname", names...)
}

func Username(names ...string) RequestDecoratorFunc {
	return Param("username", names...)
}

func TechFirstName(names ...string) RequestDecoratorFunc {
	return Param("techfirstname", names...)
}

func TechLastName(names ...string) RequestDecoratorFunc {
	return Param("techlastname", names...)
}

func AttachToName(names ...string) RequestDecoratorFunc {
	return Param("attach_to_name", names...)
}

func AttachToCategory(categories ...string) RequestDecoratorFunc {
	return Param("attach_to_category", categories...)
}

// LastModified restricts a listing to entities modified since the given time.
func LastModified(since time.Time) RequestDecoratorFunc {
	return Param("last_modified", since.UTC().Format(time.RFC3339))
}

// UDF filters on a user field. The key may carry an operator suffix,
// e.g. "Volume>" or "Volume>=".
func UDF(key string, values ...string) RequestDecoratorFunc {
	return rawParam("udf."+key, values...)
}

func UDTName(names ...string) RequestDecoratorFunc {
	return rawParam("udt.name", names...)
}

// UDT filters on a field of a user defined type, keyed as TYPE.FIELD[OPERATOR].
func UDT(key string, values ...string) RequestDecoratorFunc {
	return rawParam("udt."+key, values...)
}

// StartIndex asks for the single page starting at index. Listings given a
// start index do not follow next page pointers.
func StartIndex(index int) RequestDecoratorFunc {
	return Param(StartIndexParam, fmt.Sprintf("%d", index))
}

const StartIndexParam string = "start-index"

func encodeParams(parameters []RequestDecoratorFunc) []string {
	params := make([]string, 0, len(parameters))
	for _, rdf := range parameters {
		params = rdf(params)
	}
	return params
}

func hasStartIndex(params []string) bool {
	for _, p := range params {
		if strings.HasPrefix(p, StartIndexParam+"=") {
			return true
		}
	}
	return false
}

func withParams(uri string, params []string) string {
	if len(params) == 0 {
		return uri
	}

	separator := "?"
	if strings.Contains(uri, "?") {
		separator = "&"
	}

	return uri + separator + strings.Join(params, "&")
}
