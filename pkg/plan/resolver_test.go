package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func resolverContext() map[string]interface{} {
	return map[string]interface{}{
		"alarmName": "ec2-high-cpu-prod",
		"namespace": "AWS/EC2",
		"dimensions": map[string]interface{}{
			"InstanceId": "i-1234567890abcdef0",
		},
		"state": map[string]interface{}{
			"value":  "ALARM",
			"reason": "Threshold crossed",
		},
	}
}

func TestResolveValueSingleToken(t *testing.T) {
	got := ResolveValue("${dimensions.InstanceId}", resolverContext())

	assert.Equal(t, "i-1234567890abcdef0", got)
}

func TestResolveValueEmbeddedTokens(t *testing.T) {
	got := ResolveValue("alarm ${alarmName} in ${namespace}", resolverContext())

	assert.Equal(t, "alarm ec2-high-cpu-prod in AWS/EC2", got)
}

func TestResolveValueMissingPathLeftVerbatim(t *testing.T) {
	got := ResolveValue("${dimensions.ClusterName}", resolverContext())

	assert.Equal(t, "${dimensions.ClusterName}", got)
}

func TestResolveValueNonStringPassthrough(t *testing.T) {
	ctx := resolverContext()

	assert.Equal(t, 3, ResolveValue(3, ctx))
	assert.Equal(t, true, ResolveValue(true, ctx))
	assert.Nil(t, ResolveValue(nil, ctx))
}

func TestResolveValueTraversalThroughNonMap(t *testing.T) {
	got := ResolveValue("${alarmName.deeper}", resolverContext())

	assert.Equal(t, "${alarmName.deeper}", got)
}

func TestResolveParamsReturnsNewMap(t *testing.T) {
	params := map[string]interface{}{
		"instance_id":  "${dimensions.InstanceId}",
		"service_name": "nginx",
		"adjustment":   1,
	}

	resolved := ResolveParams(params, resolverContext())

	assert.Equal(t, "i-1234567890abcdef0", resolved["instance_id"])
	assert.Equal(t, "nginx", resolved["service_name"])
	assert.Equal(t, 1, resolved["adjustment"])

	// the input map is left untouched
	assert.Equal(t, "${dimensions.InstanceId}", params["instance_id"])
}

func TestResolveIsIdempotentOnResolvedText(t *testing.T) {
	ctx := resolverContext()

	once := ResolveValue("restart ${dimensions.InstanceId}", ctx)
	twice := ResolveValue(once, ctx)

	assert.Equal(t, once, twice)
}
