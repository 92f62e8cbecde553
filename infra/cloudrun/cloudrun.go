package cloudrun

import (
	"fmt"
	"strconv"

	"github.com/pulumi/pulumi-docker/sdk/v4/go/docker"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/cloudrun"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/serviceaccount"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"

	"github.com/passabola/chatbot/infra/common"
	infradocker "github.com/passabola/chatbot/infra/docker"
	"github.com/passabola/chatbot/infra/secret"
)

type URLs struct {
	FAQ       pulumi.StringOutput
	Assistant pulumi.StringOutput
}

// service describes one of the two binaries packaged in the shared image.
type service struct {
	name        string
	command     string
	port        int
	account     *serviceaccount.Account
	envs        cloudrun.ServiceTemplateSpecContainerEnvArray
	dependsOn   []pulumi.Resource
	serviceName string
}

func SetupCloudRun(ctx *pulumi.Context, prov *gcp.Provider, res ...pulumi.Resource) (*URLs, error) {
	img, err := buildImage(ctx, res...)
	if err != nil {
		return nil, err
	}

	srv, err := enableCloudRun(ctx, prov)
	if err != nil {
		return nil, err
	}

	faqSA, err := createServiceAccount(ctx, prov, "faqServiceAccount", "faq-service", "roles/datastore.viewer")
	if err != nil {
		return nil, err
	}
	assistantSA, err := createServiceAccount(ctx, prov, "assistantServiceAccount", "assistant-service", "roles/aiplatform.user")
	if err != nil {
		return nil, err
	}

	searchKey, err := createSearchKeySecret(ctx, assistantSA)
	if err != nil {
		return nil, err
	}

	base := commonEnvs(ctx)

	faqEnvs := append(cloudrun.ServiceTemplateSpecContainerEnvArray{}, base...)
	chatCfg := config.New(ctx, "chatbot")
	if collection := chatCfg.Get("faqCollection"); collection != "" {
		faqEnvs = append(faqEnvs, env("FAQCOLLECTION", collection))
	}
	if threshold := chatCfg.Get("faqThreshold"); threshold != "" {
		faqEnvs = append(faqEnvs, env("FAQTHRESHOLD", threshold))
	}

	searchCfg := config.New(ctx, "search")
	assistantEnvs := append(cloudrun.ServiceTemplateSpecContainerEnvArray{}, base...)
	assistantEnvs = append(assistantEnvs,
		env("VERTEXMODEL", valueOr(chatCfg.Get("vertexModel"), "gemini-2.0-flash")),
		env("SEARCHPROVIDER", valueOr(searchCfg.Get("provider"), "tavily")),
		&cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name: pulumi.String("SEARCHAPIKEY"),
			ValueFrom: &cloudrun.ServiceTemplateSpecContainerEnvValueFromArgs{
				SecretKeyRef: &cloudrun.ServiceTemplateSpecContainerEnvValueFromSecretKeyRefArgs{
					Name: searchKey,
					Key:  pulumi.String("latest"),
				},
			},
		},
	)

	faqSvc, err := createCloudRunService(ctx, img, prov, service{
		name:        "faqService",
		command:     "/app/faq",
		port:        5000,
		account:     faqSA,
		envs:        faqEnvs,
		dependsOn:   []pulumi.Resource{srv},
		serviceName: "passabola-faq",
	})
	if err != nil {
		return nil, err
	}

	assistantSvc, err := createCloudRunService(ctx, img, prov, service{
		name:        "assistantService",
		command:     "/app/assistant",
		port:        8080,
		account:     assistantSA,
		envs:        assistantEnvs,
		dependsOn:   []pulumi.Resource{srv},
		serviceName: "passabola-assistant",
	})
	if err != nil {
		return nil, err
	}

	if err := allowPublicAccess(ctx, "faqPublicInvoker", faqSvc, prov); err != nil {
		return nil, err
	}
	if err := allowPublicAccess(ctx, "assistantPublicInvoker", assistantSvc, prov); err != nil {
		return nil, err
	}

	return &URLs{
		FAQ:       serviceURL(faqSvc),
		Assistant: serviceURL(assistantSvc),
	}, nil
}

func buildImage(ctx *pulumi.Context, res ...pulumi.Resource) (*docker.Image, error) {
	gcpCfg := config.New(ctx, "gcp")
	projectID := gcpCfg.Require("project")
	region := gcpCfg.Require("region")

	hash, err := common.GenerateHash("..", ".git", "infra", "_examples")
	if err != nil {
		return nil, err
	}

	return docker.NewImage(ctx, "chatbotImage", &docker.ImageArgs{
		Build: docker.DockerBuildArgs{
			Platform:   pulumi.String("linux/amd64"),
			Context:    pulumi.String(".."),            // build from repo root
			Dockerfile: pulumi.String("../Dockerfile"), // builds both binaries
		},
		ImageName: pulumi.String(fmt.Sprintf("%s-docker.pkg.dev/%s/%s/chatbot:%s", region, projectID, infradocker.RepositoryID, hash)),
	},
		pulumi.DependsOn(res),
	)
}

func enableCloudRun(ctx *pulumi.Context, prov *gcp.Provider) (*projects.Service, error) {
	return projects.NewService(ctx, "cloudRunService", &projects.ServiceArgs{
		Service: pulumi.String("run.googleapis.com"),
	},
		pulumi.Provider(prov),
	)
}

func createServiceAccount(ctx *pulumi.Context, prov *gcp.Provider, resourceName, accountID, role string) (*serviceaccount.Account, error) {
	gcpCfg := config.New(ctx, "gcp")
	projectID := gcpCfg.Require("project")

	sa, err := serviceaccount.NewAccount(ctx, resourceName, &serviceaccount.AccountArgs{
		AccountId:   pulumi.String(accountID),
		DisplayName: pulumi.String(accountID + " runtime"),
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return nil, err
	}

	_, err = projects.NewIAMMember(ctx, resourceName+"Role", &projects.IAMMemberArgs{
		Role: pulumi.String(role),
		Member: sa.Email.ApplyT(func(email string) string {
			return fmt.Sprintf("serviceAccount:%s", email)
		}).(pulumi.StringOutput),
		Project: pulumi.String(projectID),
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return nil, err
	}

	return sa, nil
}

func createSearchKeySecret(ctx *pulumi.Context, sa *serviceaccount.Account) (pulumi.StringOutput, error) {
	searchCfg := config.New(ctx, "search")
	apiKey := searchCfg.RequireSecret("apiKey")

	s, err := secret.AddSecret(ctx, "searchApiKeySecret", "searchApiKey", apiKey)
	if err != nil {
		return pulumi.StringOutput{}, err
	}
	if err := secret.GrantAccess(ctx, "searchApiKeyAccessor", s, sa); err != nil {
		return pulumi.StringOutput{}, err
	}
	return s.SecretId, nil
}

func commonEnvs(ctx *pulumi.Context) cloudrun.ServiceTemplateSpecContainerEnvArray {
	gcpCfg := config.New(ctx, "gcp")
	crCfg := config.New(ctx, "cloudrun")
	chatCfg := config.New(ctx, "chatbot")

	envs := cloudrun.ServiceTemplateSpecContainerEnvArray{
		env("PROJECTID", gcpCfg.Require("project")),
		env("REGION", gcpCfg.Require("region")),
		env("LOGLEVEL", crCfg.Require("logLevel")),
	}
	if origins := chatCfg.Get("corsAllowedOrigins"); origins != "" {
		envs = append(envs, env("CORSALLOWEDORIGINS", origins))
	}
	return envs
}

func createCloudRunService(ctx *pulumi.Context,
	img *docker.Image,
	prov *gcp.Provider,
	svc service) (*cloudrun.Service, error) {
	gcpCfg := config.New(ctx, "gcp")
	crCfg := config.New(ctx, "cloudrun")

	region := gcpCfg.Require("region")
	minScale := crCfg.Require("minScale")
	maxScale := crCfg.Require("maxScale")
	cpu := crCfg.Require("cpu")
	memory := crCfg.Require("memory")
	concurrency := crCfg.Require("concurrency")
	timeout, _ := strconv.Atoi(crCfg.Require("timeout"))

	envs := append(svc.envs, env("SERVICENAME", svc.serviceName))

	return cloudrun.NewService(ctx, svc.name, &cloudrun.ServiceArgs{
		Name:     pulumi.String(svc.serviceName),
		Location: pulumi.String(region),

		Template: &cloudrun.ServiceTemplateArgs{

			Metadata: &cloudrun.ServiceTemplateMetadataArgs{
				// ---- AUTOSCALING + INSTANCE SIZE ----
				Annotations: pulumi.StringMap{
					// Autoscaling bounds
					"autoscaling.knative.dev/minScale": pulumi.String(minScale),
					"autoscaling.knative.dev/maxScale": pulumi.String(maxScale),

					// Instance sizing
					"run.googleapis.com/cpu":    pulumi.String(cpu),
					"run.googleapis.com/memory": pulumi.String(memory),

					// Allow throttling when idle (reduces cost)
					"run.googleapis.com/cpu-throttling": pulumi.String("true"),

					// Set the number of concurrent requests per container
					"run.googleapis.com/container-concurrency": pulumi.String(concurrency),
				},
			},

			Spec: &cloudrun.ServiceTemplateSpecArgs{
				ServiceAccountName: svc.account.Email,
				TimeoutSeconds:     pulumi.Int(timeout),

				Containers: cloudrun.ServiceTemplateSpecContainerArray{
					&cloudrun.ServiceTemplateSpecContainerArgs{
						Image:    img.ImageName,
						Commands: pulumi.StringArray{pulumi.String(svc.command)},
						Ports: cloudrun.ServiceTemplateSpecContainerPortArray{
							&cloudrun.ServiceTemplateSpecContainerPortArgs{
								ContainerPort: pulumi.Int(svc.port),
							},
						},
						Envs: envs,
					},
				},
			},
		},
	},
		pulumi.Provider(prov),
		pulumi.DependsOn(svc.dependsOn),
	)
}

// allowPublicAccess opens the service to unauthenticated callers; the chat
// endpoints have no user accounts.
func allowPublicAccess(ctx *pulumi.Context, resourceName string, svc *cloudrun.Service, prov *gcp.Provider) error {
	gcpCfg := config.New(ctx, "gcp")
	region := gcpCfg.Require("region")

	_, err := cloudrun.NewIamMember(ctx, resourceName, &cloudrun.IamMemberArgs{
		Service:  svc.Name,
		Location: pulumi.String(region),
		Role:     pulumi.String("roles/run.invoker"),
		Member:   pulumi.String("allUsers"),
	},
		pulumi.Provider(prov),
	)
	return err
}

func serviceURL(svc *cloudrun.Service) pulumi.StringOutput {
	return svc.Statuses.Index(pulumi.Int(0)).Url().Elem()
}

func env(name, value string) *cloudrun.ServiceTemplateSpecContainerEnvArgs {
	return &cloudrun.ServiceTemplateSpecContainerEnvArgs{
		Name:  pulumi.String(name),
		Value: pulumi.String(value),
	}
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
